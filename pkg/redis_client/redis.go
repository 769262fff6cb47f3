package redis_client

import (
	"context"
	"strconv"

	"github.com/adjust/rmq/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/pidboard/pkg/util"
)

var Client *redis.Client
var QueueConnection rmq.Connection

const defaultConnectionAddress = "localhost:6379"
const defaultConnectionPassword = ""
const defaultDatabase = 0

const queueConnectionTag = "pidboard"

// Configured reports whether a redis server has been configured. Redis is optional for the service.
func Configured() bool {
	return util.GetEnvironmentVariable("PIDBOARD_REDIS_ADDRESS", "") != ""
}

func Connect() error {
	address := defaultConnectionAddress
	password := defaultConnectionPassword
	database := defaultDatabase

	env := util.GetEnvironmentVariables()

	if env["PIDBOARD_REDIS_ADDRESS"] != "" {
		address = env["PIDBOARD_REDIS_ADDRESS"]
	}

	if env["PIDBOARD_REDIS_PASSWORD"] != "" {
		password = env["PIDBOARD_REDIS_PASSWORD"]
	}

	if env["PIDBOARD_REDIS_DATABASE"] != "" {
		if n, err := strconv.Atoi(env["PIDBOARD_REDIS_DATABASE"]); err == nil {
			database = n
		} else {
			return err
		}
	}

	return ConnectWithOptions(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	})
}

// ConnectWithOptions opens the shared client and the queue connection on top of it
func ConnectWithOptions(options *redis.Options) error {
	Client = redis.NewClient(options)

	statusCmd := Client.Ping(context.Background())
	err := statusCmd.Err()
	if err != nil {
		return err
	}

	QueueConnection, err = rmq.OpenConnectionWithRedisClient(queueConnectionTag, Client, nil)
	if err != nil {
		return err
	}

	log.Info().Str("address", options.Addr).Int("database", options.DB).Msg("Connected to redis")

	return nil
}

func Close() error {
	if Client == nil {
		return nil
	}

	err := Client.Close()
	Client = nil
	QueueConnection = nil

	return err
}
