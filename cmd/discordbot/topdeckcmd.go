/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	_ "embed"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/mikeb26/topdeck-standings/fetcher"
	"github.com/mikeb26/topdeck-standings/filterstate"
	"github.com/mikeb26/topdeck-standings/query"
	"github.com/mikeb26/topdeck-standings/standings"
	"github.com/mikeb26/topdeck-standings/terms"
	"github.com/mikeb26/topdeck-standings/view"
)

type TopdeckSubCommand string

const (
	TopdeckHelpCmd      TopdeckSubCommand = "help"
	TopdeckStandingsCmd TopdeckSubCommand = "standings"
)

var topdeckSubCmdHdlrs = map[TopdeckSubCommand]CmdHandler{
	TopdeckHelpCmd:      topdeckHelpCmdHandler,
	TopdeckStandingsCmd: topdeckStandingsCmdHandler,
}

var (
	fetcherOnce      sync.Once
	standingsFetcher fetcher.Fetcher
)

// getFetcher returns the Fetcher shared by all interactions, creating the
// default API client on first use.
func getFetcher(ctx context.Context) fetcher.Fetcher {
	fetcherOnce.Do(func() {
		if standingsFetcher == nil {
			standingsFetcher = fetcher.NewDefaultClient(context.WithoutCancel(ctx))
		}
	})
	return standingsFetcher
}

// termOption is the catalog condition a slash command option sets.
type termOption struct {
	tag string
	op  string
}

// termOptionName derives a discord-legal option name such as wins_gte or
// datecreated_gte from a term tag and operator.
func termOptionName(t terms.Term, op string) string {
	path := t.Path()
	field := path[len(path)-1]
	return strings.ToLower(field) + "_" + strings.TrimPrefix(op, "$")
}

func buildTermOptions(catalog *terms.Catalog) ([]*discordgo.ApplicationCommandOption,
	map[string]termOption) {

	var opts []*discordgo.ApplicationCommandOption
	byName := make(map[string]termOption)

	for _, t := range catalog.Terms() {
		for _, c := range t.Conditions {
			name := termOptionName(t, c.Operator)
			opt := &discordgo.ApplicationCommandOption{
				Name:        name,
				Description: fmt.Sprintf("%v %v", t.Name, c.Label),
			}
			switch c.InputType {
			case terms.InputSelect:
				opt.Type = discordgo.ApplicationCommandOptionInteger
				for _, o := range c.Options {
					if o.Value == nil || o.Disabled {
						continue
					}
					opt.Choices = append(opt.Choices,
						&discordgo.ApplicationCommandOptionChoice{
							Name:  o.Label,
							Value: o.Value,
						})
				}
			case terms.InputDate:
				opt.Type = discordgo.ApplicationCommandOptionString
				opt.Description += " (e.g. 2025-06-14)"
			default:
				opt.Type = discordgo.ApplicationCommandOptionNumber
			}
			opts = append(opts, opt)
			byName[name] = termOption{tag: t.Tag, op: c.Operator}
		}
	}

	return opts, byName
}

func topdeckCommand() *discordgo.ApplicationCommand {
	termOpts, _ := buildTermOptions(terms.Default())

	var sortChoices []*discordgo.ApplicationCommandOptionChoice
	for _, k := range standings.SortKeys() {
		sortChoices = append(sortChoices,
			&discordgo.ApplicationCommandOptionChoice{Name: k, Value: k})
	}

	standingsOpts := []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "tid",
			Description: "Tournament ID",
			Required:    true,
		},
	}
	standingsOpts = append(standingsOpts, termOpts...)
	standingsOpts = append(standingsOpts,
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "sort",
			Description: "Column to sort by (default is standing)",
			Choices:     sortChoices,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "desc",
			Description: "Reverse the sort direction (default is false)",
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "broadcast",
			Description: "Share with the rest of the channel instead of only to you (default is false)",
		},
	)

	return &discordgo.ApplicationCommand{
		Name:        string(TopdeckCmd),
		Description: "Tournament standings; try /topdeck help to start",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(TopdeckHelpCmd),
				Description: "Show usage for topdeck",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(TopdeckStandingsCmd),
				Description: "Get filtered standings for a tournament",
				Options:     standingsOpts,
			},
		},
	}
}

func topdeckCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	data := inter.ApplicationCommandData()
	hdlr := topdeckHelpCmdHandler
	if len(data.Options) > 0 {
		if h, ok := topdeckSubCmdHdlrs[TopdeckSubCommand(data.Options[0].Name)]; ok {
			hdlr = h
		}
	}
	return hdlr(ctx, inter)
}

func newEphemeralResponse() *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	}
}

//go:embed help.md
var helpText string

func topdeckHelpCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newEphemeralResponse()
	resp.Data.Content = truncateContent(helpText)
	return resp
}

// topdeckStandingsCmdHandler handles /topdeck standings: every term option
// given becomes a filter condition, then the standings are fetched and
// rendered in the requested order.
func topdeckStandingsCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newEphemeralResponse()
	data := inter.ApplicationCommandData()
	if len(data.Options) == 0 {
		resp.Data.Content = "Please provide a tournament ID."
		log.Printf("discordbot.standings: %v", resp.Data.Content)
		return resp
	}

	catalog := terms.Default()
	_, byName := buildTermOptions(catalog)
	broadcast := false // default
	sortState := standings.SortState{Key: standings.DefaultSortKey}
	var tid string
	var conds []*discordgo.ApplicationCommandInteractionDataOption

	for _, opt := range data.Options[0].Options {
		switch opt.Name {
		case "tid":
			tid = strings.TrimSpace(opt.StringValue())
		case "sort":
			sortState.Key = opt.StringValue()
		case "desc":
			sortState.Toggled = opt.BoolValue()
		case "broadcast":
			broadcast = opt.BoolValue()
		default:
			conds = append(conds, opt)
		}
	}
	if tid == "" {
		resp.Data.Content = "Please provide a tournament ID."
		log.Printf("discordbot.standings: %v", resp.Data.Content)
		return resp
	}

	m := filterstate.New(catalog, filterstate.DefaultFilter(tid))
	for _, opt := range conds {
		to, ok := byName[opt.Name]
		if !ok {
			log.Printf("discordbot.standings: ignoring unknown option %v",
				opt.Name)
			continue
		}
		if err := m.SetTerm(to.tag, to.op, opt.Value); err != nil {
			resp.Data.Content = fmt.Sprintf("Invalid %v: %v", opt.Name, err)
			log.Printf("discordbot.standings: %v", resp.Data.Content)
			return resp
		}
	}

	v := view.New(getFetcher(ctx), m)
	v.SetSort(sortState)
	if err := v.Refresh(ctx); err != nil {
		resp.Data.Content = fmt.Sprintf("Error fetching standings for %v: %v",
			tid, err)
		log.Printf("discordbot.standings: %v", resp.Data.Content)
		return resp
	}

	// Wrap output in code block for monospace formatting in Discord
	resp.Data.Content = fmt.Sprintf("```\n%s```", truncateContent(v.Output()))
	resp.Data.Embeds = []*discordgo.MessageEmbed{
		{
			Title:       "Filter",
			Type:        discordgo.EmbedTypeRich,
			Description: fmt.Sprintf("`?%v`", query.Encode(v.Snapshot().Applied)),
		},
	}

	if broadcast {
		resp.Data.Flags = 0
	}

	return resp
}

// https://discord.com/developers/docs/resources/channel#start-thread-in-forum-or-media-channel-forum-and-media-thread-message-params-object
// limits messages to 2k characters
func truncateContent(s string) string {
	const MsgLimit = 1988 // keep space for newlines and markdown
	runes := []rune(s)
	if len(runes) > MsgLimit {
		s = fmt.Sprintf("%v...", string(runes[:MsgLimit]))
	}
	return s
}
