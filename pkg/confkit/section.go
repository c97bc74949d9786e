package confkit

import (
	"fmt"
	"strings"
)

// Section points at a config block kept in its own file. Only File is read
// from the main config; Value is filled by Hydrate.
type Section[T any] struct {
	File  string `json:",optional"`
	Value *T     `json:"-"`
}

// Hydrate loads File, resolved against base, through loader. A blank File
// leaves the section unloaded. On error File keeps its configured value.
func (s *Section[T]) Hydrate(base string, loader func(string) (*T, error)) error {
	if strings.TrimSpace(s.File) == "" {
		return nil
	}
	path := ResolvePath(base, s.File)
	v, err := loader(path)
	if err != nil {
		return err
	}
	if v == nil {
		return fmt.Errorf("confkit: %s loaded no value", path)
	}
	s.File, s.Value = path, v
	return nil
}

// Loaded reports whether Hydrate produced a value.
func (s *Section[T]) Loaded() bool {
	return s != nil && s.Value != nil
}
