/* Copyright 2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package sio

import (
	"context"
	"errors"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketSink is a Sink that writes each point as a text message
// on a WebSocket connection.
type WebSocketSink struct {
	URL string

	// WriteTimeout limits each write.  Zero means no limit.
	WriteTimeout time.Duration

	sync.Mutex
	conn *websocket.Conn
}

func NewWebSocketSink(u string) *WebSocketSink {
	return &WebSocketSink{
		URL:          u,
		WriteTimeout: 5 * time.Second,
	}
}

// Start creates the WebSocket session.
func (s *WebSocketSink) Start(ctx context.Context) error {
	u, err := url.Parse(s.URL)
	if err != nil {
		return err
	}

	log.Println("wsconnect", u.String())
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return err
	}

	s.Lock()
	s.conn = conn
	s.Unlock()
	return nil
}

func (s *WebSocketSink) Emit(ctx context.Context, m *Message) error {
	s.Lock()
	defer s.Unlock()
	if s.conn == nil {
		return errors.New("WebSocket not connected")
	}
	if 0 < s.WriteTimeout {
		s.conn.SetWriteDeadline(time.Now().Add(s.WriteTimeout))
	}
	return s.conn.WriteJSON(m)
}

// Stop sends a close message and terminates the WebSocket connection.
func (s *WebSocketSink) Stop(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()
	if s.conn == nil {
		return nil
	}
	log.Printf("Disconnecting")
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done")
	err := s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	if cerr := s.conn.Close(); err == nil {
		err = cerr
	}
	s.conn = nil
	return err
}
