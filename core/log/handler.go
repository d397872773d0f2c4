// Copyright (C) 2026 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"sync"
)

// Handler is the handler of log messages.
type Handler interface {
	Handle(*Message)
	Close()
}

type handler struct {
	handle func(*Message)
	close  func()
}

func (h handler) Handle(m *Message) { h.handle(m) }
func (h handler) Close() {
	if h.close != nil {
		h.close()
	}
}

// NewHandler returns a Handler that calls handle for each message and close
// when the handler is closed. close may be nil.
func NewHandler(handle func(*Message), close func()) Handler {
	return handler{handle, close}
}

// Synchronized returns a Handler that serializes all calls to h.
func Synchronized(h Handler) Handler {
	mutex := &sync.Mutex{}
	return handler{
		handle: func(m *Message) {
			mutex.Lock()
			defer mutex.Unlock()
			h.Handle(m)
		},
		close: func() {
			mutex.Lock()
			defer mutex.Unlock()
			h.Close()
		},
	}
}

// Broadcaster forwards all messages to all supplied handlers.
func Broadcaster(handlers ...Handler) Handler {
	return handler{
		handle: func(m *Message) {
			for _, h := range handlers {
				h.Handle(m)
			}
		},
		close: func() {
			for _, h := range handlers {
				h.Close()
			}
		},
	}
}

type handlerKeyTy string

const handlerKey handlerKeyTy = "log.handlerKey"

// PutHandler returns a new context with the Handler assigned to h.
func PutHandler(ctx context.Context, h Handler) context.Context {
	return context.WithValue(ctx, handlerKey, h)
}

// GetHandler returns the Handler assigned to ctx.
func GetHandler(ctx context.Context) Handler {
	out, _ := ctx.Value(handlerKey).(Handler)
	return out
}
