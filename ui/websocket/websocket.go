package websocket

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type client struct{}

// Notification codes pushed to the UI.
const (
	CodeState         = "STATE"          // idle / listening / processing
	CodeTranscription = "TRANSCRIPTION"  // what the mic heard
	CodeBotMessage    = "BOT_MESSAGE"    // assistant reply text
	CodeAlert         = "ALERT"          // watcher reminders and warnings
	CodeUserStatus    = "USER_STATUS"    // active / away
	CodeSystemStatus  = "SYSTEM_STATUS"  // startup / shutdown notices
	CodeVitals        = "VITALS"         // runtime counters snapshot
)

// Inbound codes from the UI.
const (
	CodeUserCommand  = "USER_COMMAND"
	CodeVoiceTrigger = "VOICE_TRIGGER"
)

type BroadcastMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Result  any    `json:"result,omitempty"`
}

// CommandHandler receives inbound UI messages. ProcessText must be safe to
// call from the connection goroutine.
type CommandHandler interface {
	ProcessText(ctx context.Context, text string)
	VoiceTrigger(ctx context.Context)
}

var (
	Clients    = make(map[*websocket.Conn]client)
	Register   = make(chan *websocket.Conn)
	Broadcast  = make(chan BroadcastMessage, 16)
	Unregister = make(chan *websocket.Conn)
)

func handleRegister(conn *websocket.Conn) {
	Clients[conn] = client{}
	logrus.Debug("[WS] Connection registered")
}

func handleUnregister(conn *websocket.Conn) {
	delete(Clients, conn)
	logrus.Debug("[WS] Connection unregistered")
}

func broadcastToLocal(message BroadcastMessage) {
	marshalMessage, err := json.Marshal(message)
	if err != nil {
		logrus.Errorf("[WS] Marshal error: %v", err)
		return
	}

	for conn := range Clients {
		if err := conn.WriteMessage(websocket.TextMessage, marshalMessage); err != nil {
			logrus.Errorf("[WS] Write error: %v", err)
			closeConnection(conn)
		}
	}
}

func closeConnection(conn *websocket.Conn) {
	_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
	_ = conn.Close()
	delete(Clients, conn)
}

// RunHub owns the client set; all mutation happens on this goroutine.
func RunHub(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for conn := range Clients {
				closeConnection(conn)
			}
			logrus.Info("[WS] Hub stopped")
			return

		case conn := <-Register:
			handleRegister(conn)

		case conn := <-Unregister:
			handleUnregister(conn)

		case message := <-Broadcast:
			broadcastToLocal(message)
		}
	}
}

// Notify is the non-blocking push used across the app. Dropping a UI frame
// under pressure is preferable to stalling a watcher.
func Notify(code, message string, result any) {
	select {
	case Broadcast <- BroadcastMessage{Code: code, Message: message, Result: result}:
	default:
		logrus.Warnf("[WS] Broadcast queue full, dropping %s", code)
	}
}

func RegisterRoutes(app fiber.Router, handler CommandHandler) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})

	app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		defer func() {
			Unregister <- conn
			_ = conn.Close()
		}()

		Register <- conn

		for {
			messageType, message, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					logrus.Println("read error:", err)
				}
				return
			}

			if messageType != websocket.TextMessage {
				logrus.Println("unsupported message type:", messageType)
				continue
			}

			var messageData BroadcastMessage
			if err := json.Unmarshal(message, &messageData); err != nil {
				logrus.Println("unmarshal error:", err)
				continue
			}

			switch messageData.Code {
			case CodeUserCommand:
				handler.ProcessText(context.Background(), messageData.Message)
			case CodeVoiceTrigger:
				handler.VoiceTrigger(context.Background())
			default:
				logrus.Debugf("[WS] Ignoring inbound code %q", messageData.Code)
			}
		}
	}))
}
