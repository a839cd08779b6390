package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"medialib/internal/domain/models"
	"medialib/internal/domain/repositories"
	"medialib/internal/repository/postgres"
)

// DefaultReconnectDelay is the pause between LISTEN attempts after a dropped connection
const DefaultReconnectDelay = 2 * time.Second

var channelPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// Listener delivers folder change notifications published by the
// notify trigger on the folders table.
type Listener struct {
	pool           *pgxpool.Pool
	channel        string
	reconnectDelay time.Duration
	logger         *slog.Logger
}

// NewListener creates a change feed listener on channel
func NewListener(config *postgres.RepositoryConfig, channel string) (repositories.FolderChangeFeed, error) {
	if !channelPattern.MatchString(channel) {
		return nil, fmt.Errorf("invalid notify channel %q", channel)
	}
	return &Listener{
		pool:           config.Pool,
		channel:        channel,
		reconnectDelay: DefaultReconnectDelay,
		logger:         config.Logger,
	}, nil
}

// Listen blocks until ctx is done, calling handle for every decoded change in
// arrival order. Connection failures are logged and retried.
func (l *Listener) Listen(ctx context.Context, handle func(models.FolderChange)) error {
	for {
		err := l.listenOnce(ctx, handle)
		if ctx.Err() != nil {
			return nil
		}
		l.logger.Warn("folder change feed interrupted, reconnecting",
			"channel", l.channel,
			"error", err,
			"delay", l.reconnectDelay,
		)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(l.reconnectDelay):
		}
	}
}

func (l *Listener) listenOnce(ctx context.Context, handle func(models.FolderChange)) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listener connection: %w", err)
	}
	defer func() {
		// Background context: ctx is usually canceled by now
		if _, err := conn.Exec(context.Background(), "UNLISTEN *"); err != nil {
			l.logger.Debug("unlisten failed", "error", err)
		}
		conn.Release()
	}()

	channel := pgx.Identifier{l.channel}.Sanitize()
	if _, err := conn.Exec(ctx, "LISTEN "+channel); err != nil {
		return fmt.Errorf("listen %s: %w", l.channel, err)
	}
	l.logger.Info("listening for folder changes", "channel", l.channel)

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}

		change, err := decodeChange([]byte(notification.Payload))
		if err != nil {
			l.logger.Warn("skipping malformed folder change",
				"channel", notification.Channel,
				"error", err,
			)
			continue
		}
		handle(change)
	}
}

// decodeChange parses one notify payload: {"transition": ..., "document": {...}}
func decodeChange(payload []byte) (models.FolderChange, error) {
	var change models.FolderChange
	if err := json.Unmarshal(payload, &change); err != nil {
		return change, fmt.Errorf("decode payload: %w", err)
	}

	switch change.Kind {
	case models.ChangeCreate, models.ChangeUpdate, models.ChangeDelete:
	case "":
		return change, errors.New("missing transition")
	default:
		return change, fmt.Errorf("unknown transition %q", change.Kind)
	}

	if change.Folder.ID == "" {
		return change, errors.New("missing document id")
	}
	return change, nil
}
