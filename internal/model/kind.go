package model

import (
	"fmt"
	"strings"
)

// ActorKind selects the behavior an actor runs. The set is closed.
type ActorKind int32

const (
	KindEgg ActorKind = iota
	KindFood
	KindLobber
	KindRunner
)

// String returns the lower-case kind name.
func (k ActorKind) String() string {
	switch k {
	case KindEgg:
		return "egg"
	case KindFood:
		return "food"
	case KindLobber:
		return "lobber"
	case KindRunner:
		return "runner"
	default:
		return fmt.Sprintf("kind(%d)", int32(k))
	}
}

// IsMonster reports whether the kind runs the monster behavior.
func (k ActorKind) IsMonster() bool {
	return k == KindLobber || k == KindRunner
}

// ParseActorKind parses a kind name, case-insensitive.
func ParseActorKind(s string) (ActorKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "egg":
		return KindEgg, nil
	case "food":
		return KindFood, nil
	case "lobber":
		return KindLobber, nil
	case "runner":
		return KindRunner, nil
	}
	return 0, fmt.Errorf("unknown actor kind %q", s)
}

// MarshalText encodes the kind as its name.
func (k ActorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText accepts any name ParseActorKind does.
func (k *ActorKind) UnmarshalText(text []byte) error {
	parsed, err := ParseActorKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
