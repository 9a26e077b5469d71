package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Sternrassler/rbx-client/pkg/entity"
	"github.com/Sternrassler/rbx-client/pkg/pagination"
	"github.com/Sternrassler/rbx-client/pkg/roblox"
)

// withApp runs fn with an app built from the current settings.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func newUserCommand() *cobra.Command {
	var byName bool
	cmd := &cobra.Command{
		Use:   "user <id|username>",
		Short: "Show a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				var (
					u   *roblox.User
					err error
				)
				if byName {
					u, err = a.session.Users.ByUsername(ctx, args[0], false)
					if err == nil {
						u, err = a.session.Users.Get(ctx, u.ID)
					}
				} else {
					id, perr := parseID(args[0])
					if perr != nil {
						return perr
					}
					u, err = a.session.Users.Get(ctx, id)
				}
				if err != nil {
					return err
				}
				return printRecord(cmd.OutOrStdout(), viper.GetString("output"), userRecord(u))
			})
		},
	}
	cmd.Flags().BoolVar(&byName, "by-name", false, "treat the argument as a username")
	return cmd
}

func newGroupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "group <id>",
		Short: "Show a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				g, err := a.session.Groups.Get(ctx, id)
				if err != nil {
					return err
				}
				return printRecord(cmd.OutOrStdout(), viper.GetString("output"), groupRecord(g))
			})
		},
	}
}

func newPlaceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "place <id>",
		Short: "Show a place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				p, err := a.session.Places.Get(ctx, id)
				if err != nil {
					return err
				}
				return printRecord(cmd.OutOrStdout(), viper.GetString("output"), placeRecord(p))
			})
		},
	}
}

func newUniverseCommand() *cobra.Command {
	var byPlace bool
	cmd := &cobra.Command{
		Use:   "universe <id>",
		Short: "Show a universe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				var u *roblox.Universe
				if byPlace {
					u, err = a.session.Universes.ByPlace(ctx, id)
				} else {
					u, err = a.session.Universes.Get(ctx, id)
				}
				if err != nil {
					return err
				}
				return printRecord(cmd.OutOrStdout(), viper.GetString("output"), universeRecord(u))
			})
		},
	}
	cmd.Flags().BoolVar(&byPlace, "by-place", false, "treat the argument as a place id")
	return cmd
}

func newBadgeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "badge <id>",
		Short: "Show a badge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				b, err := a.session.Badges.Get(ctx, id)
				if err != nil {
					return err
				}
				return printRecord(cmd.OutOrStdout(), viper.GetString("output"), badgeRecord(b))
			})
		},
	}
}

func newPresenceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "presence <user-id>...",
		Short: "Show user presences",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			users := make([]entity.Identifier, 0, len(args))
			for _, arg := range args {
				id, err := parseID(arg)
				if err != nil {
					return err
				}
				users = append(users, entity.ID(id))
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				presences, err := a.session.Presence.Multiget(ctx, users)
				if err != nil {
					return err
				}
				records := make([]record, 0, len(presences))
				for _, p := range presences {
					records = append(records, presenceRecord(p))
				}
				return printRecords(cmd.OutOrStdout(), viper.GetString("output"), records)
			})
		},
	}
}

func newFriendsCommand() *cobra.Command {
	var mutualWith int64
	cmd := &cobra.Command{
		Use:   "friends <user-id>",
		Short: "List a user's friends",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				var friends []*roblox.Friend
				if mutualWith > 0 {
					friends, err = a.session.Friends.Mutual(ctx, entity.ID(id), entity.ID(mutualWith))
				} else {
					friends, err = a.session.Friends.List(ctx, entity.ID(id))
				}
				if err != nil {
					return err
				}
				records := make([]record, 0, len(friends))
				for _, f := range friends {
					records = append(records, friendRecord(f))
				}
				return printRecords(cmd.OutOrStdout(), viper.GetString("output"), records)
			})
		},
	}
	cmd.Flags().Int64Var(&mutualWith, "mutual-with", 0, "only friends shared with this user id")
	return cmd
}

func newBadgesCommand() *cobra.Command {
	var (
		pageSize int
		pages    int
	)
	cmd := &cobra.Command{
		Use:   "badges <user-id>",
		Short: "List badges awarded to a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				set, err := a.session.Badges.UserBadges(entity.ID(id), pageSize).Drain(ctx, pages)
				if err != nil {
					return err
				}
				records := make([]record, 0, set.DataCount())
				for _, b := range set.Items() {
					records = append(records, userBadgeRecord(b))
				}
				return printRecords(cmd.OutOrStdout(), viper.GetString("output"), records)
			})
		},
	}
	cmd.Flags().IntVar(&pageSize, "page-size", 10, "items per page")
	cmd.Flags().IntVar(&pages, "pages", pagination.DefaultPageLimit, "maximum pages to fetch (0 for all)")
	return cmd
}
