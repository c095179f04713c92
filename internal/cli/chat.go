package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/nearby/internal/chat"
	"github.com/evcraddock/nearby/internal/page"
	"github.com/evcraddock/nearby/internal/tui"
	"github.com/evcraddock/nearby/internal/user"
)

// runScreen shows the interactive chat. Tests replace it.
var runScreen = func(ctx context.Context, c tui.Chat) error {
	return tui.Run(ctx, c)
}

func newRoomsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rooms",
		Short: "List your conversations",
		Args:  cobra.NoArgs,
		RunE:  runRooms,
	}
}

func runRooms(cmd *cobra.Command, args []string) error {
	e, err := cliEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	rooms, err := e.app.ListRooms(cmd.Context())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	switch {
	case isJSON():
		if rooms == nil {
			rooms = []*chat.Room{}
		}
		return printJSON(w, rooms)
	case isHTML():
		return printMarkup(w, e.app.Page().Grid(page.ChatRoomsList).Markup)
	default:
		return e.app.Renderer().WriteRooms(w, rooms, viewerType(e.app.User()))
	}
}

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat <room-id>",
		Short: "Open a conversation",
		Long:  "Opens a conversation in an interactive screen with live messages and typing indicators. Press Esc to leave.",
		Args:  cobra.ExactArgs(1),
		RunE:  runChat,
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	id, err := parseID("room", args[0])
	if err != nil {
		return err
	}

	e, err := newEnv(cmd.Context(), envOptions{realtime: true, console: true})
	if err != nil {
		return err
	}
	defer e.close()

	if !e.app.Session().Authenticated() {
		return fmt.Errorf("not logged in: run 'nearby login' first")
	}

	rooms, err := e.app.ListRooms(cmd.Context())
	if err != nil {
		return err
	}
	room := findRoom(rooms, id)
	if room == nil {
		return fmt.Errorf("conversation %d not found", id)
	}

	if err := e.app.OpenRoom(cmd.Context(), room.ID, room.PropertyTitle, room.OtherParticipant(viewerType(e.app.User()))); err != nil {
		return err
	}

	e.muteConsole()
	return runScreen(cmd.Context(), e.app)
}

func newContactCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "contact <property-id>",
		Short: "Chat with the owner of a property",
		Long:  "Starts (or resumes) the conversation with a property's owner and opens it.",
		Args:  cobra.ExactArgs(1),
		RunE:  runContact,
	}
}

func runContact(cmd *cobra.Command, args []string) error {
	id, err := parseID("property", args[0])
	if err != nil {
		return err
	}

	e, err := newEnv(cmd.Context(), envOptions{realtime: true, console: true})
	if err != nil {
		return err
	}
	defer e.close()

	p, err := e.app.ShowPropertyDetail(cmd.Context(), id)
	if err != nil {
		return err
	}
	if _, err := e.app.StartChatWithOwner(cmd.Context(), p.ID, p.OwnerID); err != nil {
		return err
	}

	e.muteConsole()
	return runScreen(cmd.Context(), e.app)
}

func findRoom(rooms []*chat.Room, id int64) *chat.Room {
	for _, r := range rooms {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func viewerType(u *user.User) user.Type {
	if u == nil {
		return ""
	}
	return u.UserType
}
