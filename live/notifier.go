package live

// Room naming shared by the hub, the notifier, and the websocket handler.
func MatchRoom(matchID string) string   { return "match_" + matchID }
func PlayerRoom(playerID string) string { return "player_" + playerID }

// Notifier publishes core notifications through the hub. It satisfies
// game.Notifier.
type Notifier struct {
	hub *Hub
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

func (n *Notifier) Message(playerID string, text string) {
	n.hub.BroadcastToRoom(PlayerRoom(playerID), Event{
		Type:    "MESSAGE",
		Payload: map[string]string{"text": text},
	})
}

func (n *Notifier) Title(playerID string, title, subtitle string) {
	n.hub.BroadcastToRoom(PlayerRoom(playerID), Event{
		Type:    "TITLE",
		Payload: map[string]string{"title": title, "subtitle": subtitle},
	})
}

func (n *Notifier) MatchEvent(matchID string, event string, payload any) {
	n.hub.BroadcastToRoom(MatchRoom(matchID), Event{
		Type:    event,
		Payload: payload,
	})
}
