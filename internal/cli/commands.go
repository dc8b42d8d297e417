package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"pingme/internal/models"
	"pingme/internal/view"
)

// parseArgs parses fs allowing flags and positional arguments to be mixed.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	fs.SetOutput(io.Discard)
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, usageErrorf("%s: %v", fs.Name(), err)
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func parseID(name, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, usageErrorf("invalid %s %q", name, raw)
	}
	return id, nil
}

func (c *CLI) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageErrorf("login needs <email> <password>")
	}
	s, err := c.sessions.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	mode := "remote"
	if s.Mock {
		mode = "mock"
	}
	msg := fmt.Sprintf("logged in as user %d (%s mode)", s.UserID, mode)
	return c.render(messageOutput{Message: msg, ID: s.UserID}, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, msg)
		return err
	})
}

func (c *CLI) signup(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return usageErrorf("signup needs <name> <email> <password>")
	}
	res, err := c.sessions.Signup(ctx, args[0], args[1], args[2])
	if err != nil {
		return err
	}
	return c.message(res.Message)
}

func (c *CLI) logout(ctx context.Context) error {
	if err := c.sessions.Logout(ctx); err != nil {
		return err
	}
	return c.message("logged out")
}

func (c *CLI) whoami(ctx context.Context) error {
	s, err := c.sessions.RequireActive(ctx)
	if err != nil {
		return err
	}
	deps, err := c.deps(ctx)
	if err != nil {
		return err
	}
	u, err := deps.Provider.GetUser(ctx, s.UserID)
	if err != nil {
		return err
	}
	out := toUser(*u)
	return c.render(out, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%s <%s> (id %d, %s mode)\n", out.Name, out.Email, out.ID, deps.Provider.Mode())
		return err
	})
}

func (c *CLI) loadFeed(ctx context.Context) (*view.Feed, error) {
	deps, err := c.deps(ctx)
	if err != nil {
		return nil, err
	}
	f := view.NewFeed(deps)
	if err := f.Load(ctx); err != nil {
		return nil, err
	}
	return f, nil
}

func (c *CLI) feed(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("feed", flag.ContinueOnError)
	query := fs.String("q", "", "search title, content and tags")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	f, err := c.loadFeed(ctx)
	if err != nil {
		return err
	}
	snap := f.Snapshot()
	posts := f.Search(*query)

	out := make([]postOutput, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPost(p, snap.Liked[p.ID]))
	}
	return c.render(out, func(w io.Writer) error {
		return writePostTable(w, out)
	})
}

type postFlags struct {
	title, body, tags, photo *string
	set                      map[string]bool
}

func newPostFlags(name string) (*flag.FlagSet, *postFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	pf := &postFlags{
		title: fs.String("t", "", "title"),
		body:  fs.String("b", "", "content"),
		tags:  fs.String("tags", "", "comma-separated tags"),
		photo: fs.String("photo", "", "photo URL"),
		set:   make(map[string]bool),
	}
	return fs, pf
}

// apply overwrites the fields given on the command line.
func (pf *postFlags) apply(fs *flag.FlagSet, in models.PostInput) models.PostInput {
	fs.Visit(func(f *flag.Flag) { pf.set[f.Name] = true })
	if pf.set["t"] {
		in.Title = *pf.title
	}
	if pf.set["b"] {
		in.Body = *pf.body
	}
	if pf.set["tags"] {
		in.Tags = *pf.tags
	}
	if pf.set["photo"] {
		in.PhotoURL = *pf.photo
	}
	return in
}

func (c *CLI) post(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageErrorf("post needs create, edit or delete")
	}
	sub, args := args[0], args[1:]

	switch sub {
	case "create":
		fs, pf := newPostFlags("post create")
		if _, err := parseArgs(fs, args); err != nil {
			return err
		}
		f, err := c.loadFeed(ctx)
		if err != nil {
			return err
		}
		f.OpenCreate()
		p, err := f.Submit(ctx, pf.apply(fs, models.PostInput{}))
		if err != nil {
			return err
		}
		return c.renderPostResult("post created", *p)

	case "edit":
		fs, pf := newPostFlags("post edit")
		pos, err := parseArgs(fs, args)
		if err != nil {
			return err
		}
		if len(pos) != 1 {
			return usageErrorf("post edit needs <id>")
		}
		id, err := parseID("post id", pos[0])
		if err != nil {
			return err
		}
		f, err := c.loadFeed(ctx)
		if err != nil {
			return err
		}
		if err := f.OpenEdit(id); err != nil {
			return err
		}
		p, err := f.Submit(ctx, pf.apply(fs, f.Snapshot().Form))
		if err != nil {
			return err
		}
		return c.renderPostResult("post updated", *p)

	case "delete":
		if len(args) != 1 {
			return usageErrorf("post delete needs <id>")
		}
		id, err := parseID("post id", args[0])
		if err != nil {
			return err
		}
		f, err := c.loadFeed(ctx)
		if err != nil {
			return err
		}
		if err := f.Delete(ctx, id); err != nil {
			return err
		}
		return c.render(messageOutput{Message: "post deleted", ID: id}, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "post %d deleted\n", id)
			return err
		})

	default:
		return usageErrorf("unknown post command %q", sub)
	}
}

func (c *CLI) renderPostResult(msg string, p models.Post) error {
	out := toPost(p, false)
	return c.render(out, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%s: #%d %s\n", msg, out.ID, out.Title)
		return err
	})
}

func (c *CLI) like(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageErrorf("like needs <postId>")
	}
	id, err := parseID("post id", args[0])
	if err != nil {
		return err
	}
	f, err := c.loadFeed(ctx)
	if err != nil {
		return err
	}
	liked, err := f.ToggleLike(ctx, id)
	if err != nil {
		return err
	}

	count := 0
	for _, p := range f.Snapshot().Posts {
		if p.ID == id {
			count = p.LikeCount
		}
	}
	verb := "unliked"
	if liked {
		verb = "liked"
	}
	msg := fmt.Sprintf("%s post %d (%d likes)", verb, id, count)
	return c.render(messageOutput{Message: msg, ID: id, Liked: &liked}, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, msg)
		return err
	})
}

func (c *CLI) loadDetail(ctx context.Context, raw string) (*view.PostDetail, error) {
	id, err := parseID("post id", raw)
	if err != nil {
		return nil, err
	}
	deps, err := c.deps(ctx)
	if err != nil {
		return nil, err
	}
	v := view.NewPostDetail(deps)
	if err := v.Load(ctx, id); err != nil {
		return nil, err
	}
	if v.Snapshot().NotFound {
		return nil, models.NewNotFoundError("Post", id)
	}
	return v, nil
}

func (c *CLI) show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageErrorf("show needs <postId>")
	}
	v, err := c.loadDetail(ctx, args[0])
	if err != nil {
		return err
	}
	snap := v.Snapshot()
	p := *snap.Post
	p.LikeCount = snap.LikeCount

	out := postDetailOutput{Post: toPost(p, snap.Liked), Own: v.IsOwnPost(), Comments: make([]commentOutput, 0, len(snap.Comments))}
	for _, cm := range snap.Comments {
		out.Comments = append(out.Comments, toComment(cm))
	}
	return c.render(out, func(w io.Writer) error {
		writePost(w, out.Post)
		fmt.Fprintf(w, "\n%d comments\n", len(out.Comments))
		for _, cm := range out.Comments {
			fmt.Fprintf(w, "  [%d] %s: %s\n", cm.ID, cm.Author, cm.Body)
		}
		return nil
	})
}

func (c *CLI) comment(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usageErrorf("comment needs add <postId> <text> or delete <postId> <commentId>")
	}
	sub := args[0]
	v, err := c.loadDetail(ctx, args[1])
	if err != nil {
		return err
	}

	switch sub {
	case "add":
		body := strings.Join(args[2:], " ")
		cm, err := v.AddComment(ctx, body)
		if err != nil {
			return err
		}
		if cm == nil {
			return c.message("empty comment ignored")
		}
		out := toComment(*cm)
		return c.render(out, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "comment %d added\n", out.ID)
			return err
		})

	case "delete":
		if len(args) != 3 {
			return usageErrorf("comment delete needs <postId> <commentId>")
		}
		id, err := parseID("comment id", args[2])
		if err != nil {
			return err
		}
		if err := v.DeleteComment(ctx, id); err != nil {
			return err
		}
		return c.render(messageOutput{Message: "comment deleted", ID: id}, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "comment %d deleted\n", id)
			return err
		})

	default:
		return usageErrorf("unknown comment command %q", sub)
	}
}

func (c *CLI) profile(ctx context.Context, args []string) error {
	if len(args) > 0 && args[0] == "edit" {
		return c.editProfile(ctx, args[1:])
	}

	s, err := c.sessions.RequireActive(ctx)
	if err != nil {
		return err
	}
	profileID := s.UserID
	if len(args) == 1 {
		if profileID, err = parseID("user id", args[0]); err != nil {
			return err
		}
	} else if len(args) > 1 {
		return usageErrorf("profile takes at most one <userId>")
	}

	v, err := c.loadProfile(ctx, profileID)
	if err != nil {
		return err
	}
	snap := v.Snapshot()

	out := profileOutput{User: toUser(*snap.User), Own: snap.IsOwn, Posts: make([]postOutput, 0, len(snap.Posts))}
	for _, p := range snap.Posts {
		out.Posts = append(out.Posts, toPost(p, false))
	}
	return c.render(out, func(w io.Writer) error {
		fmt.Fprintf(w, "%s (id %d)\n", out.User.Name, out.User.ID)
		if out.User.Bio != "" {
			fmt.Fprintln(w, out.User.Bio)
		}
		if out.User.PhotoURL != "" {
			fmt.Fprintf(w, "photo: %s\n", out.User.PhotoURL)
		}
		fmt.Fprintln(w)
		return writePostTable(w, out.Posts)
	})
}

func (c *CLI) loadProfile(ctx context.Context, id int64) (*view.Profile, error) {
	deps, err := c.deps(ctx)
	if err != nil {
		return nil, err
	}
	v := view.NewProfile(deps)
	if err := v.Load(ctx, id); err != nil {
		return nil, err
	}
	if snap := v.Snapshot(); snap.NotFound || snap.User == nil {
		return nil, models.NewNotFoundError("User", id)
	}
	return v, nil
}

func (c *CLI) editProfile(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("profile edit", flag.ContinueOnError)
	name := fs.String("name", "", "display name")
	bio := fs.String("bio", "", "biography")
	photo := fs.String("photo", "", "profile photo URL")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	var patch models.UserPatch
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			patch.Name = name
		case "bio":
			patch.Bio = bio
		case "photo":
			patch.ProfilePhotoURL = photo
		}
	})
	if patch.Name == nil && patch.Bio == nil && patch.ProfilePhotoURL == nil {
		return usageErrorf("profile edit needs at least one of -name, -bio, -photo")
	}

	s, err := c.sessions.RequireActive(ctx)
	if err != nil {
		return err
	}
	v, err := c.loadProfile(ctx, s.UserID)
	if err != nil {
		return err
	}
	u, err := v.UpdateProfile(ctx, patch)
	if err != nil {
		return err
	}
	out := toUser(*u)
	return c.render(out, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "profile updated: %s\n", out.Name)
		return err
	})
}

func (c *CLI) share(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageErrorf("share needs <postId>")
	}
	v, err := c.loadDetail(ctx, args[0])
	if err != nil {
		return err
	}
	url, err := v.Share(ctx)
	if err != nil {
		return err
	}
	// The clipboard already printed the link in text mode.
	return c.render(messageOutput{Message: "link copied", URL: url}, func(io.Writer) error { return nil })
}
