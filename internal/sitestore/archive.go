// Package sitestore mirrors generated demo sites to S3-compatible storage so
// they can be shared with prospects before any hosting exists.
package sitestore

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/devvault2026/revampai/platform/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ShareLinkTTL is how long a presigned page link stays valid.
const ShareLinkTTL = 7 * 24 * time.Hour

// Archiver stores generated page HTML in MinIO and hands out presigned
// share links.
type Archiver struct {
	client *minio.Client
	bucket string
}

func NewArchiver(cfg config.StorageConfig) (*Archiver, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, fmt.Errorf("MinIO is not configured")
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &Archiver{client: client, bucket: cfg.GetMinioBucketSitePages()}, nil
}

// EnsureBucket creates the site-pages bucket if it doesn't exist.
func (a *Archiver) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
		}
	}
	return nil
}

// StorePages uploads each page of a lead's generated site. Pages are keyed
// by lead so re-generation overwrites the previous revision.
func (a *Archiver) StorePages(ctx context.Context, leadID uuid.UUID, pages map[string]string) error {
	for name, html := range pages {
		key := pageKey(leadID, name)
		reader := strings.NewReader(html)
		_, err := a.client.PutObject(ctx, a.bucket, key, reader, int64(reader.Len()), minio.PutObjectOptions{
			ContentType: "text/html; charset=utf-8",
		})
		if err != nil {
			return fmt.Errorf("failed to upload page %s: %w", key, err)
		}
	}
	return nil
}

// ShareLink returns a presigned GET URL for one stored page.
func (a *Archiver) ShareLink(ctx context.Context, leadID uuid.UUID, pageName string) (string, time.Time, error) {
	key := pageKey(leadID, pageName)
	expiresAt := time.Now().Add(ShareLinkTTL)

	presigned, err := a.client.PresignedGetObject(ctx, a.bucket, key, ShareLinkTTL, make(url.Values))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate share link for %s: %w", key, err)
	}
	return presigned.String(), expiresAt, nil
}

// RemoveSite deletes every stored page for a lead.
func (a *Archiver) RemoveSite(ctx context.Context, leadID uuid.UUID) error {
	prefix := "leads/" + leadID.String() + "/"
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return fmt.Errorf("failed to list site pages: %w", obj.Err)
		}
		if err := a.client.RemoveObject(ctx, a.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("failed to delete page %s: %w", obj.Key, err)
		}
	}
	return nil
}

func pageKey(leadID uuid.UUID, pageName string) string {
	return path.Join("leads", leadID.String(), sanitizePageName(pageName)+".html")
}

// sanitizePageName keeps object keys flat even if a page name sneaks in a
// separator.
func sanitizePageName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	name = strings.ReplaceAll(name, "/", "-")
	name = strings.ReplaceAll(name, "..", "-")
	if name == "" {
		return "index"
	}
	return name
}
