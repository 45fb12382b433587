package ws

// ClientMsg é uma mensagem recebida do cliente WebSocket
type ClientMsg struct {
	Type string `json:"type"` // ping | snapshot
}

type pong struct {
	Type string `json:"type"`
}
