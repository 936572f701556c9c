package health

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func okCheck(name string) Checker {
	return NewCheck(name, func(ctx context.Context) Signal { return OK{} })
}

func TestNewRegistry_PreservesOrder(t *testing.T) {
	reg, err := NewRegistry(okCheck("db"), okCheck("cache"), okCheck("queue"))
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	want := []string{"db", "cache", "queue"}
	if got := reg.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	if reg.Len() != 3 {
		t.Errorf("Len() = %d, want 3", reg.Len())
	}
}

func TestNewRegistry_Empty(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	if reg.Len() != 0 {
		t.Errorf("Len() = %d, want 0", reg.Len())
	}
}

func TestNewRegistry_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		checkers []Checker
		wantErr  error
	}{
		{"nil checker", []Checker{okCheck("db"), nil}, ErrInvalidCheck},
		{"empty name", []Checker{okCheck("")}, ErrInvalidCheck},
		{"blank name", []Checker{okCheck("  ")}, ErrInvalidCheck},
		{"duplicate", []Checker{okCheck("db"), okCheck("db")}, ErrDuplicateCheck},
		{"reserved", []Checker{okCheck(ReservedName)}, ErrReservedName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.checkers...)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewRegistry() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMustRegistry_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustRegistry() should panic on duplicate names")
		}
	}()
	MustRegistry(okCheck("db"), okCheck("db"))
}

func TestRegistry_Lookup(t *testing.T) {
	reg := MustRegistry(okCheck("db"), okCheck("cache"))

	c, ok := reg.Lookup("cache")
	if !ok {
		t.Fatal("Lookup(cache) not found")
	}
	if c.Name() != "cache" {
		t.Errorf("Lookup(cache).Name() = %v", c.Name())
	}

	if _, ok := reg.Lookup("missing"); ok {
		t.Error("Lookup(missing) should not be found")
	}
}

func TestRegistry_CheckersIsCopy(t *testing.T) {
	reg := MustRegistry(okCheck("db"))

	checkers := reg.Checkers()
	checkers[0] = okCheck("other")

	if got := reg.Names()[0]; got != "db" {
		t.Errorf("registry mutated through Checkers(): first name = %v", got)
	}
}

func TestRegistry_Nil(t *testing.T) {
	var reg *Registry
	if reg.Len() != 0 {
		t.Errorf("nil Len() = %d", reg.Len())
	}
	if reg.Checkers() != nil {
		t.Error("nil Checkers() should be nil")
	}
	if _, ok := reg.Lookup("x"); ok {
		t.Error("nil Lookup() should not find anything")
	}
}
