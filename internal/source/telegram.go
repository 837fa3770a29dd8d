package source

import (
	"bufio"
	"cmp"
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"

	"dealwatch/internal/model"
)

const historyLimit = 200

// Telegram wraps an MTProto client able to read public channel history.
// One client serves all monitored channels.
type Telegram struct {
	client *telegram.Client
	phone  string
}

// NewTelegram creates the client. The session is persisted at sessionPath
// so later runs skip the login code prompt.
func NewTelegram(apiID int, apiHash, phone, sessionPath string) *Telegram {
	client := telegram.NewClient(apiID, apiHash, telegram.Options{
		SessionStorage: &session.FileStorage{Path: sessionPath},
	})
	return &Telegram{client: client, phone: phone}
}

// Connect establishes the MTProto connection, authenticates if the saved
// session is missing or stale, and invokes fn while the connection is
// alive. fn's error is returned as-is.
func (t *Telegram) Connect(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.client.Run(ctx, func(ctx context.Context) error {
		flow := auth.NewFlow(
			auth.Constant(t.phone, "", auth.CodeAuthenticatorFunc(promptCode)),
			auth.SendCodeOptions{},
		)
		if err := t.client.Auth().IfNecessary(ctx, flow); err != nil {
			return fmt.Errorf("authenticate: %w", err)
		}
		return fn(ctx)
	})
}

// promptCode reads the login code from the terminal on first run.
func promptCode(_ context.Context, _ *tg.AuthSentCode) (string, error) {
	fmt.Fprint(os.Stderr, "Telegram login code: ")
	code, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read login code: %w", err)
	}
	return strings.TrimSpace(code), nil
}

// Channel returns a Source reading one public channel. Valid only while
// Connect's callback is running.
func (t *Telegram) Channel(username string) *Channel {
	return &Channel{api: t.client.API(), username: username}
}

// Channel reads the message history of a single public channel.
type Channel struct {
	api      *tg.Client
	username string
	peer     *tg.InputPeerChannel
}

func (c *Channel) resolve(ctx context.Context) (*tg.InputPeerChannel, error) {
	if c.peer != nil {
		return c.peer, nil
	}
	res, err := c.api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{
		Username: c.username,
	})
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", c.username, err)
	}
	for _, chat := range res.Chats {
		if ch, ok := chat.(*tg.Channel); ok {
			c.peer = &tg.InputPeerChannel{ChannelID: ch.ID, AccessHash: ch.AccessHash}
			return c.peer, nil
		}
	}
	return nil, fmt.Errorf("resolve %s: not a channel", c.username)
}

// Messages returns channel posts with IDs greater than afterID, oldest
// first. Service messages and posts without text are skipped.
func (c *Channel) Messages(ctx context.Context, afterID int64) ([]model.Message, error) {
	peer, err := c.resolve(ctx)
	if err != nil {
		return nil, err
	}

	res, err := c.api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:  peer,
		MinID: int(afterID),
		Limit: historyLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("get history %s: %w", c.username, err)
	}

	var raw []tg.MessageClass
	switch v := res.(type) {
	case *tg.MessagesChannelMessages:
		raw = v.Messages
	case *tg.MessagesMessagesSlice:
		raw = v.Messages
	case *tg.MessagesMessages:
		raw = v.Messages
	default:
		return nil, fmt.Errorf("get history %s: unexpected response %T", c.username, res)
	}

	var out []model.Message
	for _, mc := range raw {
		msg, ok := mc.(*tg.Message)
		if !ok || msg.Message == "" {
			continue
		}
		if int64(msg.ID) <= afterID {
			continue
		}
		out = append(out, model.Message{
			SourceID: c.username,
			ID:       int64(msg.ID),
			Text:     msg.Message,
			SentAt:   time.Unix(int64(msg.Date), 0).UTC(),
		})
	}
	slices.SortFunc(out, func(a, b model.Message) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}
