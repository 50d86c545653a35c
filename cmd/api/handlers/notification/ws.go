package notification

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hertz-contrib/websocket"
	"github.com/sirupsen/logrus"

	"clipstream.com/cmd/notification/gateway"
	"clipstream.com/pkg/jwt"
)

const authTimeout = 10 * time.Second

var upgrader = websocket.HertzUpgrader{
	CheckOrigin: func(ctx *app.RequestContext) bool {
		return true
	},
}

type authFrame struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// ServeWS upgrades the connection and hands it to the hub once the client
// authenticates. The token arrives either as a query parameter or inside
// the first frame; without it within the deadline the socket is closed.
func ServeWS(ctx context.Context, c *app.RequestContext) {
	token := c.Query("token")
	err := upgrader.Upgrade(c, func(conn *websocket.Conn) {
		userID, err := authenticate(conn, token)
		if err != nil {
			payload, _ := json.Marshal(gateway.Frame{Type: "error", Data: "unauthorized"})
			conn.WriteMessage(websocket.TextMessage, payload)
			conn.Close()
			return
		}
		payload, _ := json.Marshal(gateway.Frame{Type: "ready"})
		conn.WriteMessage(websocket.TextMessage, payload)
		gateway.Serve(hub, conn, userID)
	})
	if err != nil {
		logrus.Warnf("api: websocket upgrade failed: %v", err)
	}
}

func authenticate(conn *websocket.Conn, queryToken string) (int64, error) {
	if queryToken != "" {
		return jwt.ParseUserID(queryToken)
	}
	conn.SetReadDeadline(time.Now().Add(authTimeout))
	defer conn.SetReadDeadline(time.Time{})

	_, message, err := conn.ReadMessage()
	if err != nil {
		return 0, err
	}
	var frame authFrame
	if err := json.Unmarshal(message, &frame); err != nil {
		return 0, err
	}
	return jwt.ParseUserID(frame.Token)
}
