package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	goredis "github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"

	"barangay-events/internal/kafka"
	"barangay-events/internal/models"
	"barangay-events/internal/redis"
)

var (
	tailSource string
	tailGroup  string
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow published event changes",
	Long: `Print event changes as they are published, one line each.

--source kafka reads the configured topic as a consumer group member.
--source redis subscribes to the configured pub/sub channel.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		log := newLogger(cmd)
		out := cmd.OutOrStdout()

		switch tailSource {
		case "kafka":
			consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, tailGroup, log)
			defer consumer.Close()
			return consumer.Start(cmd.Context(), func(change models.EventChange) {
				printChange(out, change)
			})
		case "redis":
			client, err := redis.Connect(cmd.Context(), cfg.Redis.Addr, log)
			if err != nil {
				return err
			}
			defer client.Close()
			return tailRedis(cmd.Context(), client, cfg.Redis.Channel, out)
		default:
			return fmt.Errorf("unknown source %q (want kafka or redis)", tailSource)
		}
	},
}

func init() {
	tailCmd.Flags().StringVar(&tailSource, "source", "kafka", "where to read changes from: kafka or redis")
	tailCmd.Flags().StringVar(&tailGroup, "group", "barangay-admin-tail", "kafka consumer group id")
}

func tailRedis(ctx context.Context, client *goredis.Client, channel string, out io.Writer) error {
	sub := client.Subscribe(ctx, channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s: %w", channel, err)
	}

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			var change models.EventChange
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				fmt.Fprintf(out, "skipping malformed message: %v\n", err)
				continue
			}
			printChange(out, change)
		}
	}
}

func printChange(out io.Writer, change models.EventChange) {
	title := ""
	if change.Event != nil {
		title = change.Event.Title
	}
	fmt.Fprintf(out, "%s\t%-7s\tevent %d\t%s\n",
		change.OccurredAt.Format("2006-01-02 15:04:05"), change.Type, change.EventID, title)
}
