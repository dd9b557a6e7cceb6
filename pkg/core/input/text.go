package input

import "fmt"

// Raw event enums travel as lower-case strings in JSON payloads.

func (k TargetKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *TargetKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "canvas", "":
		*k = TargetCanvas
	case "node":
		*k = TargetNode
	case "control":
		*k = TargetControl
	default:
		return fmt.Errorf("unknown target kind %q", b)
	}
	return nil
}

var mouseKinds = map[string]MouseKind{"down": MouseDown, "move": MouseMove, "up": MouseUp, "cancel": MouseCancel}

func (k MouseKind) MarshalText() ([]byte, error) {
	for s, v := range mouseKinds {
		if v == k {
			return []byte(s), nil
		}
	}
	return nil, fmt.Errorf("unknown mouse kind %d", k)
}

func (k *MouseKind) UnmarshalText(b []byte) error {
	v, ok := mouseKinds[string(b)]
	if !ok {
		return fmt.Errorf("unknown mouse kind %q", b)
	}
	*k = v
	return nil
}

var touchKinds = map[string]TouchKind{"start": TouchStart, "move": TouchMove, "end": TouchEnd, "cancel": TouchCancel}

func (k TouchKind) MarshalText() ([]byte, error) {
	for s, v := range touchKinds {
		if v == k {
			return []byte(s), nil
		}
	}
	return nil, fmt.Errorf("unknown touch kind %d", k)
}

func (k *TouchKind) UnmarshalText(b []byte) error {
	v, ok := touchKinds[string(b)]
	if !ok {
		return fmt.Errorf("unknown touch kind %q", b)
	}
	*k = v
	return nil
}

var buttons = map[string]Button{"primary": ButtonPrimary, "middle": ButtonMiddle, "secondary": ButtonSecondary}

func (b Button) MarshalText() ([]byte, error) {
	for s, v := range buttons {
		if v == b {
			return []byte(s), nil
		}
	}
	return nil, fmt.Errorf("unknown button %d", b)
}

func (b *Button) UnmarshalText(p []byte) error {
	if len(p) == 0 {
		*b = ButtonPrimary
		return nil
	}
	v, ok := buttons[string(p)]
	if !ok {
		return fmt.Errorf("unknown button %q", p)
	}
	*b = v
	return nil
}
