/* Copyright (c) 2013 The s3cache AUTHORS. All rights reserved.
 * Copyright (c) 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file in the current directory for license terms
 *
 * Package s3cache provides an implementation of httpcache.Cache that stores and
 * retrieves data using Amazon S3. It backs both the cached http transport and
 * the standings response cache. Object keys are md5 digests of the cache key
 * placed under a configurable prefix, optionally gzipped.
 */
package s3cache

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

const DefaultPrefix = "topdeck"

// Cache objects store and retrieve data using Amazon S3.
type Cache struct {
	// Config is the Amazon S3 configuration.
	Config aws.Config

	// Client is the s3 client used when interacting with S3. Init() builds
	// one from the default Config; callers may override it afterwards.
	Client *s3.Client

	// Prefix is prepended to every object key. Defaults to DefaultPrefix.
	Prefix string

	bucketName string
	gzip       bool
	logErrors  bool
	ctx        context.Context
}

// New returns a new Cache with underlying storage in the specified Amazon S3
// bucket. Additionally, specify whether objects persisted in the cache should
// be compressed with gzip or not. Callers should take care to invoke Init() on
// the returned Cache object before use
func New(ctx context.Context, bucketName string, gzipObjects bool,
	logErrors bool) *Cache {

	return &Cache{
		Prefix:     DefaultPrefix,
		ctx:        ctx,
		bucketName: bucketName,
		gzip:       gzipObjects,
		logErrors:  logErrors,
	}
}

// Init loads the default AWS configuration (environment, shared config and
// credentials files) and verifies the bucket can be read and listed.
func (c *Cache) Init() error {
	var err error
	c.Config, err = config.LoadDefaultConfig(c.ctx)
	if err != nil {
		return fmt.Errorf("s3cache.init: failed to load AWS config: %w", err)
	}
	c.Client = s3.NewFromConfig(c.Config)

	if _, err = c.Client.HeadBucket(c.ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.bucketName),
	}); err != nil {
		return fmt.Errorf("s3cache.init: head bucket failed for %s: %w", c.bucketName, err)
	}

	if _, err = c.Client.ListObjectsV2(c.ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(c.bucketName),
		MaxKeys: aws.Int32(1),
	}); err != nil {
		return fmt.Errorf("s3cache.init: list objects failed for %s: %w", c.bucketName, err)
	}

	return nil
}

// Get implements httpcache.Cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	objKey := c.objectKey(key)
	resp, err := c.Client.GetObject(c.ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(objKey),
	})
	if err != nil {
		if !isMiss(err) {
			c.logf("get", objKey, "failed to get object: %v", err)
		}
		return nil, false
	}
	defer resp.Body.Close()

	var rdr io.Reader = resp.Body
	if c.gzip {
		gr, err := gzip.NewReader(resp.Body)
		if err != nil {
			c.logf("get", objKey, "failed to open compressed object: %v", err)
			return nil, false
		}
		defer gr.Close()
		rdr = gr
	}

	data, err := io.ReadAll(rdr)
	if err != nil {
		c.logf("get", objKey, "failed to read object: %v", err)
		return nil, false
	}

	return data, true
}

// Set implements httpcache.Cache.
func (c *Cache) Set(key string, data []byte) {
	objKey := c.objectKey(key)
	input := &s3.PutObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(objKey),
		Body:   bytes.NewReader(data),
	}

	if c.gzip {
		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		if _, err := gw.Write(data); err != nil {
			c.logf("set", objKey, "failed to gzip data: %v", err)
			return
		}
		if err := gw.Close(); err != nil {
			c.logf("set", objKey, "failed to close gzip writer: %v", err)
			return
		}
		input.Body = &buf
		input.ContentEncoding = aws.String("gzip")
	}

	if _, err := c.Client.PutObject(c.ctx, input); err != nil {
		c.logf("set", objKey, "put failed: %v", err)
	}
}

// Delete implements httpcache.Cache.
func (c *Cache) Delete(key string) {
	objKey := c.objectKey(key)
	_, err := c.Client.DeleteObject(c.ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(objKey),
	})
	if err != nil {
		c.logf("delete", objKey, "delete failed: %v", err)
	}
}

func (c *Cache) objectKey(key string) string {
	prefix := c.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}

	h := md5.New()
	io.WriteString(h, key)
	objKey := fmt.Sprintf("/%v/%v", prefix, hex.EncodeToString(h.Sum(nil)))
	if c.gzip {
		objKey += ".gz"
	}

	return objKey
}

func (c *Cache) logf(op string, objKey string, format string, args ...any) {
	if !c.logErrors {
		return
	}
	log.Printf("s3cache.%v: %v%v: %v", op, c.bucketName, objKey,
		fmt.Sprintf(format, args...))
}

// no such key just indicates a cache miss
func isMiss(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey"
}
