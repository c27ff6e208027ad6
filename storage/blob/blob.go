// Package blob é o bucket de objetos das rotas /bucket: um arquivo por objeto
// dentro de um diretório.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

var (
	ErrNotFound   = errors.New("blob: object not found")
	ErrInvalidKey = errors.New("blob: invalid key")
)

type ObjectInfo struct {
	Key      string    `json:"key"`
	Size     int64     `json:"size"`
	Uploaded time.Time `json:"uploaded"`
}

type Object struct {
	ObjectInfo
	Data []byte
}

type DiskBucket struct {
	Dir string
}

func NewDiskBucket(dir string) *DiskBucket {
	return &DiskBucket{Dir: dir}
}

// ValidKey aceita nomes de um único segmento, sem separadores nem "."/"..".
func ValidKey(key string) bool {
	if key == "" || key == "." || key == ".." {
		return false
	}
	return !strings.ContainsAny(key, `/\`) && !strings.ContainsRune(key, 0)
}

func (b *DiskBucket) path(key string) (string, error) {
	if !ValidKey(key) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(b.Dir, key), nil
}

// List devolve os objetos ordenados por chave. Diretório inexistente => vazio.
func (b *DiskBucket) List(ctx context.Context) ([]ObjectInfo, error) {
	entries, err := os.ReadDir(b.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []ObjectInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list bucket: %w", err)
	}

	out := make([]ObjectInfo, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue // removido entre ReadDir e Info
		}
		out = append(out, ObjectInfo{Key: e.Name(), Size: info.Size(), Uploaded: info.ModTime().UTC()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (b *DiskBucket) Get(ctx context.Context, key string) (Object, error) {
	p, err := b.path(key)
	if err != nil {
		return Object{}, err
	}

	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return Object{}, ErrNotFound
	}
	if err != nil {
		return Object{}, fmt.Errorf("get object %q: %w", key, err)
	}
	info, err := os.Stat(p)
	if err != nil {
		return Object{}, fmt.Errorf("stat object %q: %w", key, err)
	}
	return Object{
		ObjectInfo: ObjectInfo{Key: key, Size: int64(len(data)), Uploaded: info.ModTime().UTC()},
		Data:       data,
	}, nil
}

func (b *DiskBucket) Put(ctx context.Context, key string, data []byte) (ObjectInfo, error) {
	p, err := b.path(key)
	if err != nil {
		return ObjectInfo{}, err
	}
	if err := os.MkdirAll(b.Dir, 0o775); err != nil {
		return ObjectInfo{}, fmt.Errorf("create bucket dir: %w", err)
	}

	// grava em arquivo temporário e renomeia, para leitores nunca verem objeto parcial
	tmp, err := os.CreateTemp(b.Dir, ".upload-*")
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("put object %q: %w", key, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return ObjectInfo{}, fmt.Errorf("put object %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return ObjectInfo{}, fmt.Errorf("put object %q: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		os.Remove(tmp.Name())
		return ObjectInfo{}, fmt.Errorf("put object %q: %w", key, err)
	}
	return ObjectInfo{Key: key, Size: int64(len(data)), Uploaded: time.Now().UTC()}, nil
}

// Delete é idempotente: remover um objeto inexistente não é erro.
func (b *DiskBucket) Delete(ctx context.Context, key string) error {
	p, err := b.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete object %q: %w", key, err)
	}
	return nil
}
