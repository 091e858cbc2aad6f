package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/enerdesk/backoffice/internal/domain/auth"
)

const sessionKeyPrefix = "session:"

func runListSessions(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("list-sessions", flag.ContinueOnError)
	username := fs.String("username", "", "only show sessions for this user")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, commandTimeout)
	defer cancel()

	client, err := connectRedis(cmdCtx)
	if err != nil {
		return err
	}
	defer closeQuietly(cmdCtx.Logger, "redis", client)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err = writef(tw, "SESSION\tUSERNAME\tROLE\tLAST SEEN\tTTL\n"); err != nil {
		return err
	}

	count := 0
	err = scanSessionKeys(ctx, client, func(key string) error {
		sess, ttl, loadErr := loadSession(ctx, client, key)
		if loadErr != nil {
			cmdCtx.Logger.Warn("skipping unreadable session", "key", key, "error", loadErr)
			return nil
		}
		if *username != "" && !strings.EqualFold(sess.Username, *username) {
			return nil
		}
		count++
		return writef(tw, "%s\t%s\t%s\t%s\t%s\n",
			sess.ID, sess.Username, sess.Role, sess.LastSeenAt.Format(time.RFC3339), ttl.Round(time.Second))
	})
	if err != nil {
		return err
	}

	if err = tw.Flush(); err != nil {
		return err
	}
	return writef(os.Stdout, "\n%d active sessions\n", count)
}

func runClearSessions(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("clear-sessions", flag.ContinueOnError)
	username := fs.String("username", "", "only clear sessions for this user")
	yes := fs.Bool("yes", false, "skip confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}

	target := "all users"
	if *username != "" {
		target = fmt.Sprintf("user %q", *username)
	}
	if !*yes {
		if err := confirm(fmt.Sprintf("This forces re-login for %s.", target)); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, commandTimeout)
	defer cancel()

	client, err := connectRedis(cmdCtx)
	if err != nil {
		return err
	}
	defer closeQuietly(cmdCtx.Logger, "redis", client)

	deleted := 0
	err = scanSessionKeys(ctx, client, func(key string) error {
		if *username != "" {
			sess, _, loadErr := loadSession(ctx, client, key)
			if loadErr != nil || !strings.EqualFold(sess.Username, *username) {
				return nil
			}
		}
		if delErr := client.Del(ctx, key).Err(); delErr != nil {
			return fmt.Errorf("delete %s: %w", key, delErr)
		}
		deleted++
		return nil
	})
	if err != nil {
		return err
	}

	cmdCtx.Logger.InfoContext(ctx, "sessions cleared", "deleted", deleted, "target", target)
	return nil
}

func scanSessionKeys(ctx context.Context, client redis.UniversalClient, fn func(key string) error) error {
	var cursor uint64
	for {
		keys, next, err := client.Scan(ctx, cursor, sessionKeyPrefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("scan sessions: %w", err)
		}
		for _, key := range keys {
			if fnErr := fn(key); fnErr != nil {
				return fnErr
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func loadSession(ctx context.Context, client redis.UniversalClient, key string) (domainauth.Session, time.Duration, error) {
	data, err := client.Get(ctx, key).Result()
	if err != nil {
		return domainauth.Session{}, 0, err
	}
	var sess domainauth.Session
	if err = json.Unmarshal([]byte(data), &sess); err != nil {
		return domainauth.Session{}, 0, err
	}
	ttl, err := client.TTL(ctx, key).Result()
	if err != nil {
		return domainauth.Session{}, 0, err
	}
	return sess, ttl, nil
}

func confirm(warning string) error {
	if err := writef(os.Stdout, "%s Continue? [y/N]: ", warning); err != nil {
		return err
	}
	reader := bufio.NewReader(os.Stdin)
	resp, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read confirmation input: %w", err)
	}
	if answer := strings.ToLower(strings.TrimSpace(resp)); answer != "y" && answer != "yes" {
		return fmt.Errorf("aborted")
	}
	return nil
}
