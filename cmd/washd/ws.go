package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

// WebSocket returns a handler that cleans a stream of records: one
// JSON record per message in, one cleaning result per message out.
func (s *Service) WebSocket(ctx context.Context) http.HandlerFunc {
	var upgrader = websocket.Upgrader{} // use default options

	return func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error", err)
			return
		}
		defer c.Close()

		for {
			if ctx.Err() != nil {
				return
			}

			mt, message, err := c.ReadMessage()
			if err != nil {
				log.Println("read error", err)
				return
			}

			var (
				record map[string]interface{}
				result *cleaned
			)
			if err = json.Unmarshal(message, &record); err != nil {
				result = &cleaned{Error: "can't parse: " + err.Error()}
			} else {
				result = s.clean(ctx, record)
			}

			js, err := json.Marshal(result)
			if err != nil {
				log.Printf("marshal error %v on %#v", err, result)
				continue
			}
			if err = c.WriteMessage(mt, js); err != nil {
				log.Println("write error", err)
				return
			}
		}
	}
}
