package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Memory es un Store en memoria para desarrollo y pruebas
type Memory struct {
	mu      sync.RWMutex
	objects map[string]Object
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string]Object)}
}

func (m *Memory) Put(_ context.Context, name string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = DetectContentType(data)
	}
	id := uuid.NewString()
	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	m.objects[id] = Object{ID: id, Data: buf, ContentType: contentType}
	m.mu.Unlock()
	return id, nil
}

func (m *Memory) Get(_ context.Context, id string) (*Object, error) {
	if err := CheckID(id); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[id]
	if !ok {
		return nil, ErrNoObject
	}
	return &obj, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	if err := CheckID(id); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[id]; !ok {
		return ErrNoObject
	}
	delete(m.objects, id)
	return nil
}

// Len devuelve cuántos objetos hay guardados
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
