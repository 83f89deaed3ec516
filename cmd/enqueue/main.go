package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"matchstats/internal/logging"
	"matchstats/internal/processor"
	queue "matchstats/internal/queue"
)

func main() {
	_ = godotenv.Load()

	riotID := flag.String("riot-id", "", "player Riot ID as gameName#tagLine")
	email := flag.String("email", "", "email of a registered account")
	puuid := flag.String("puuid", "", "player puuid")
	redisURL := flag.String("redis-url", os.Getenv("REDIS_URL"), "redis connection URL")
	queueName := flag.String("queue", os.Getenv("REDIS_QUEUE"), "queue name (default refresh_players)")
	flag.Parse()

	logger := logging.Logger()

	job, err := buildJob(*riotID, *email, *puuid)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	if *redisURL == "" {
		logger.Errorf("REDIS_URL or -redis-url is required")
		os.Exit(1)
	}
	redisOpts, err := redis.ParseURL(*redisURL)
	if err != nil {
		logger.Errorf("invalid redis url: %v", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	payload, err := json.Marshal(job)
	if err != nil {
		logger.Errorf("marshal job: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	q := queue.NewRedisQueue(redisClient, *queueName)
	if err := q.Enqueue(ctx, payload); err != nil {
		logger.Errorf("enqueue failed: %v", err)
		os.Exit(1)
	}

	logger.Infof("enqueued refresh job %s on %s", job.JobID, q.Key())
}

func buildJob(riotID, email, puuid string) (processor.JobPayload, error) {
	job := processor.JobPayload{JobID: uuid.NewString()}

	set := 0
	for _, v := range []string{riotID, email, puuid} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return job, fmt.Errorf("exactly one of -riot-id, -email or -puuid is required")
	}

	switch {
	case puuid != "":
		job.PUUID = puuid
	case email != "":
		job.Email = email
	default:
		name, tag, ok := strings.Cut(riotID, "#")
		if !ok || name == "" || tag == "" {
			return job, fmt.Errorf("riot id %q must look like gameName#tagLine", riotID)
		}
		job.GameName, job.TagLine = name, tag
	}
	return job, nil
}
