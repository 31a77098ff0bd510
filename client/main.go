// A small interactive client for poking the server by hand:
//
//	go run ./client -identity alice
//	> create
//	> join AB2C3D
//	> start
//	> play 42 red
//	> draw
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
)

type envelope struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

func send(c *websocket.Conn, msgType string, payload map[string]interface{}) error {
	data, err := json.Marshal(envelope{Type: msgType, Payload: payload})
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.TextMessage, data)
}

func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	identity := flag.String("identity", "player1", "player identity")
	flag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws", RawQuery: "identity=" + url.QueryEscape(*identity)}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	go func() {
		for {
			_, data, err := c.ReadMessage()
			if err != nil {
				log.Printf("Read error: %v", err)
				os.Exit(0)
			}
			fmt.Printf("<< %s\n", data)
		}
	}()

	roomCode := ""
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case <-interrupt:
			return
		default:
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "create":
			err = send(c, "CREATE_ROOM", map[string]interface{}{"identity": *identity})
		case "join":
			if len(fields) < 2 {
				fmt.Println("usage: join <code>")
				continue
			}
			roomCode = strings.ToUpper(fields[1])
			err = send(c, "JOIN_ROOM", map[string]interface{}{"room_code": roomCode, "identity": *identity})
		case "room":
			if len(fields) < 2 {
				fmt.Println("usage: room <code>")
				continue
			}
			roomCode = strings.ToUpper(fields[1])
		case "leave":
			err = send(c, "LEAVE_ROOM", map[string]interface{}{"room_code": roomCode, "identity": *identity})
		case "start":
			err = send(c, "START_GAME", map[string]interface{}{"room_code": roomCode, "identity": *identity})
		case "play":
			if len(fields) < 2 {
				fmt.Println("usage: play <card_id> [color]")
				continue
			}
			cardID, convErr := strconv.Atoi(fields[1])
			if convErr != nil {
				fmt.Println("card_id must be a number")
				continue
			}
			payload := map[string]interface{}{"room_code": roomCode, "identity": *identity, "card_id": cardID}
			if len(fields) > 2 {
				payload["chosen_color"] = fields[2]
			}
			err = send(c, "PLAY_CARD", payload)
		case "draw":
			err = send(c, "DRAW_CARD", map[string]interface{}{"room_code": roomCode, "identity": *identity})
		case "hand":
			err = send(c, "REQUEST_HAND", map[string]interface{}{"room_code": roomCode, "identity": *identity})
		case "say":
			err = send(c, "SEND_MESSAGE", map[string]interface{}{"room_code": roomCode, "identity": *identity, "text": strings.Join(fields[1:], " ")})
		case "quit":
			return
		default:
			fmt.Println("commands: create, join <code>, room <code>, leave, start, play <id> [color], draw, hand, say <text>, quit")
			continue
		}
		if err != nil {
			log.Printf("Send error: %v", err)
			return
		}
	}
}
