package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/USSTM/facility-portal/internal/audit"
	"github.com/USSTM/facility-portal/internal/aws"
	"github.com/USSTM/facility-portal/internal/config"
	"github.com/redis/go-redis/v9"
)

func main() {
	linkTTL := flag.Duration("link-ttl", 24*time.Hour, "lifetime of the presigned download link")
	list := flag.Bool("list", false, "list existing snapshots instead of exporting")
	flag.Parse()

	cfg := config.Load()
	ctx := context.Background()

	bucket, err := aws.NewAuditBucket(ctx, cfg.AWS)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize S3 client: %v\n", err)
		os.Exit(1)
	}

	if *list {
		keys, err := bucket.ListSnapshots(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list snapshots: %v\n", err)
			os.Exit(1)
		}
		for _, k := range keys {
			fmt.Println(k)
		}
		return
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	exporter := audit.NewExporter(audit.NewRedisLog(redisClient, cfg.Audit.Capacity), bucket)
	key, n, err := exporter.Export(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to export audit log: %v\n", err)
		os.Exit(1)
	}

	url, err := bucket.PresignGet(ctx, key, *linkTTL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Exported %d records to s3://%s/%s but failed to presign: %v\n", n, bucket.Name(), key, err)
		os.Exit(1)
	}

	fmt.Printf("Exported %d records to s3://%s/%s\n", n, bucket.Name(), key)
	fmt.Println(url)
}
