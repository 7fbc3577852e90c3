/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// bot credentials and registration state come from the environment
const (
	EnvBotToken  = "TOPDECK_DISCORD_TOKEN"
	EnvPubKey    = "TOPDECK_DISCORD_PUBKEY"
	EnvAppId     = "TOPDECK_DISCORD_APP_ID"
	EnvCmdId     = "TOPDECK_DISCORD_CMD_ID"
	EnvCmdHash   = "TOPDECK_DISCORD_CMD_HASH"
	EnvListen    = "TOPDECK_DISCORD_LISTEN"
	DefaultAddr  = ":8080"
	InteractPath = "/DiscordBot/Interaction"
	MetricsPath  = "/metrics"
)

type botConfig struct {
	token   string
	pubKey  ed25519.PublicKey
	appId   string
	cmdId   string
	cmdHash string
	addr    string
}

func loadConfig() (*botConfig, error) {
	cfg := &botConfig{
		token:   os.Getenv(EnvBotToken),
		appId:   os.Getenv(EnvAppId),
		cmdId:   os.Getenv(EnvCmdId),
		cmdHash: os.Getenv(EnvCmdHash),
		addr:    os.Getenv(EnvListen),
	}
	if cfg.addr == "" {
		cfg.addr = DefaultAddr
	}
	if cfg.token == "" || cfg.appId == "" {
		return nil, fmt.Errorf("%v and %v must be set", EnvBotToken, EnvAppId)
	}

	pubKeyBytes, err := hex.DecodeString(os.Getenv(EnvPubKey))
	if err != nil || len(pubKeyBytes) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("failed to parse %v: %v", EnvPubKey, err)
	}
	cfg.pubKey = ed25519.PublicKey(pubKeyBytes)

	return cfg, nil
}

type TopLevelCommand string

const TopdeckCmd TopLevelCommand = "topdeck"

type CmdHandler func(ctx context.Context,
	i *discordgo.Interaction) *discordgo.InteractionResponse

var topLevelCmdHdlrs = map[TopLevelCommand]CmdHandler{
	TopdeckCmd: topdeckCmdHandler,
}

func newInteractionHandler(pubKey ed25519.PublicKey) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !discordgo.VerifyInteraction(r, pubKey) {
			log.Printf("discordbot.int: failed to verify")
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		serveInteraction(w, r)
	}
}

func serveInteraction(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("discordbot.int: failed to read request body: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var inter discordgo.Interaction
	if err := inter.UnmarshalJSON(body); err != nil {
		log.Printf("discordbot.int: failed to unmarshal interaction: err:%v",
			err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	resp := &discordgo.InteractionResponse{}
	switch inter.Type {
	case discordgo.InteractionPing:
		resp.Type = discordgo.InteractionResponsePong
	case discordgo.InteractionApplicationCommand:
		name := inter.ApplicationCommandData().Name
		hdlr, ok := topLevelCmdHdlrs[TopLevelCommand(name)]
		if !ok {
			resp.Type = discordgo.InteractionResponseChannelMessageWithSource
			resp.Data = &discordgo.InteractionResponseData{
				Content: fmt.Sprintf("unknown command '%v'", name),
				Flags:   discordgo.MessageFlagsEphemeral,
			}
		} else {
			resp = hdlr(r.Context(), &inter)
		}
	default:
		log.Printf("discordbot.int: unimplemented interaction type %v",
			inter.Type)
		w.WriteHeader(http.StatusNotImplemented)
		return
	}

	rawResp, err := json.Marshal(resp)
	if err != nil {
		log.Printf("discordbot.int: failed to marshal resp: err:%v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if _, err = w.Write(rawResp); err != nil {
		log.Printf("discordbot.int: failed to write resp: err:%v", err)
	}
}

func cmdRegistrationHash(cmd *discordgo.ApplicationCommand) (string, error) {
	cmdJson, err := json.Marshal(cmd)
	if err != nil {
		return "", err
	}
	hash := sha256.Sum256(cmdJson)
	return hex.EncodeToString(hash[:]), nil
}

func shouldUpdateCmdRegistration(cmd *discordgo.ApplicationCommand,
	lastHash string) bool {

	hexString, err := cmdRegistrationHash(cmd)
	if err != nil {
		log.Printf("discordbot.reg: failed to marshal cmd: %v", err)
		return false
	}

	shouldUpdate := (hexString != lastHash)
	if shouldUpdate {
		log.Printf("discordbot.reg: updating cmd reg; please set %v=%v",
			EnvCmdHash, hexString)
	}

	return shouldUpdate
}

func registerSlashCommands(client *discordgo.Session, cfg *botConfig) {
	cmd := topdeckCommand()

	if cfg.cmdId == "" {
		created, err := client.ApplicationCommandCreate(cfg.appId, "", cmd)
		if err != nil {
			log.Printf("discordbot.reg: failed to register %v: %v", cmd.Name,
				err)
			return
		}

		log.Printf("discordbot.reg: registered %v(cmdID:%v); please set %v",
			created.Name, created.ID, EnvCmdId)
	} else if shouldUpdateCmdRegistration(cmd, cfg.cmdHash) {
		updated, err := client.ApplicationCommandEdit(cfg.appId, "", cfg.cmdId,
			cmd)
		if err != nil {
			log.Printf("discordbot.reg: failed to update %v: %v", cmd.Name,
				err)
			return
		}

		log.Printf("discordbot.reg: updated %v(cmdID:%v)", updated.Name,
			updated.ID)
	}
}

func main() {
	log.SetFlags(log.Flags() &^ (log.Ldate | log.Ltime))

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("discordbot.main: %v", err)
	}
	client, err := discordgo.New("Bot " + cfg.token)
	if err != nil {
		log.Fatalf("discordbot.main: Failed to initialize discord client: %v",
			err)
	}
	go registerSlashCommands(client, cfg)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}
	log.Printf("discordbot.main: starting server on %v%v", hostname, cfg.addr)

	http.HandleFunc(InteractPath, newInteractionHandler(cfg.pubKey))
	http.Handle(MetricsPath, promhttp.Handler())
	if err := http.ListenAndServe(cfg.addr, nil); err != nil {
		log.Fatalf("discordbot.main: Serve failed: %v", err)
	}

	log.Printf("discordbot.main: exiting")
}
