package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pineda/postd/pkg/cli/internal/output"
	"github.com/pineda/postd/pkg/client"
	"github.com/pineda/postd/pkg/post"
)

var (
	listTitle string

	createUserID int64
	createTitle  string
	createBody   string

	updateUserID  int64
	updateTitle   string
	updateBody    string
	updateVersion int64
)

var postsCmd = &cobra.Command{
	Use:     "posts",
	Aliases: []string{"post"},
	Short:   "Manage posts on a running server",
}

var postsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List posts",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, _, err := newClient(cmd)
		if err != nil {
			return err
		}

		var posts []*post.Post
		if listTitle != "" {
			p, err := c.FindByTitle(cmd.Context(), listTitle)
			switch {
			case errors.Is(err, client.ErrNotFound):
				posts = []*post.Post{}
			case err != nil:
				return err
			default:
				posts = []*post.Post{p}
			}
		} else {
			posts, err = c.List(cmd.Context())
			if err != nil {
				return err
			}
		}

		if jsonOutput {
			return output.JSON(cmd.OutOrStdout(), posts)
		}
		if len(posts) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No posts found")
			return nil
		}
		return output.Posts(cmd.OutOrStdout(), posts)
	},
}

var postsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		c, _, err := newClient(cmd)
		if err != nil {
			return err
		}
		p, err := c.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printPost(cmd, p)
	},
}

var postsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a post",
	Example: `  postd posts create --user-id 1 --title "Hello" --body "First post"
  postd posts create --title "Hello" --body "Text" --token "$POSTD_TOKEN"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, _, err := newClient(cmd)
		if err != nil {
			return err
		}
		p, err := c.Create(cmd.Context(), &post.Post{
			UserID: createUserID,
			Title:  createTitle,
			Body:   createBody,
		})
		if err != nil {
			return err
		}
		return printPost(cmd, p)
	},
}

var postsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a post",
	Long: `Update a post. Fields that are not given keep their current value.

The current version is fetched first unless --version is given, so the update
fails with a version conflict only if someone else wrote in between.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		c, _, err := newClient(cmd)
		if err != nil {
			return err
		}

		current, err := c.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		next := current.Clone()
		flags := cmd.Flags()
		if flags.Changed("user-id") {
			next.UserID = updateUserID
		}
		if flags.Changed("title") {
			next.Title = updateTitle
		}
		if flags.Changed("body") {
			next.Body = updateBody
		}
		if flags.Changed("version") {
			next.Version = post.Int64(updateVersion)
		}

		p, err := c.Update(cmd.Context(), id, next)
		if err != nil {
			if errors.Is(err, client.ErrVersionConflict) {
				return fmt.Errorf("post %d was modified concurrently; fetch it and retry: %w", id, err)
			}
			return err
		}
		return printPost(cmd, p)
	},
}

var postsDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a post",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		c, _, err := newClient(cmd)
		if err != nil {
			return err
		}
		if err := c.Delete(cmd.Context(), id); err != nil {
			return err
		}
		if jsonOutput {
			return output.JSON(cmd.OutOrStdout(), map[string]any{"deleted": id})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted post %d\n", id)
		return nil
	},
}

func init() {
	postsListCmd.Flags().StringVar(&listTitle, "title", "", "Only show the post with this exact title")

	postsCreateCmd.Flags().Int64Var(&createUserID, "user-id", 0, "Owner id")
	postsCreateCmd.Flags().StringVar(&createTitle, "title", "", "Post title (required)")
	postsCreateCmd.Flags().StringVar(&createBody, "body", "", "Post body (required)")
	_ = postsCreateCmd.MarkFlagRequired("title")
	_ = postsCreateCmd.MarkFlagRequired("body")

	postsUpdateCmd.Flags().Int64Var(&updateUserID, "user-id", 0, "New owner id")
	postsUpdateCmd.Flags().StringVar(&updateTitle, "title", "", "New title")
	postsUpdateCmd.Flags().StringVar(&updateBody, "body", "", "New body")
	postsUpdateCmd.Flags().Int64Var(&updateVersion, "version", 0, "Expected current version")

	postsCmd.AddCommand(postsListCmd, postsGetCmd, postsCreateCmd, postsUpdateCmd, postsDeleteCmd)
	rootCmd.AddCommand(postsCmd)
}

// newClient builds an API client from --url and --token.
func newClient(cmd *cobra.Command) (*client.Client, string, error) {
	baseURL, token, err := clientSettings(cmd)
	if err != nil {
		return nil, "", err
	}
	return client.New(baseURL, client.WithToken(token)), baseURL, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid post id %q: must be an integer", s)
	}
	return id, nil
}

func printPost(cmd *cobra.Command, p *post.Post) error {
	if jsonOutput {
		return output.JSON(cmd.OutOrStdout(), p)
	}
	return output.Post(cmd.OutOrStdout(), p)
}
