package input

import (
	"encoding/json"
	"reflect"
	"testing"
)

func types(evs []Event) []EventType {
	out := make([]EventType, len(evs))
	for i, e := range evs {
		out[i] = e.Type
	}
	return out
}

func TestMouse(t *testing.T) {
	n := NewNormalizer(false)

	tests := []struct {
		name string
		ev   MouseEvent
		want []EventType
	}{
		{"MoveWithoutDown", MouseEvent{Kind: MouseMove}, nil},
		{"SecondaryDownIgnored", MouseEvent{Kind: MouseDown, Button: ButtonSecondary}, nil},
		{"PrimaryDown", MouseEvent{Kind: MouseDown, X: 5, Y: 6}, []EventType{PanStart}},
		{"RepeatedDownIgnored", MouseEvent{Kind: MouseDown}, nil},
		{"Move", MouseEvent{Kind: MouseMove, X: 7, Y: 8}, []EventType{PanMove}},
		{"SecondaryUpIgnored", MouseEvent{Kind: MouseUp, Button: ButtonSecondary}, nil},
		{"Up", MouseEvent{Kind: MouseUp}, []EventType{PanEnd}},
		{"UpAgainIgnored", MouseEvent{Kind: MouseUp}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := types(n.Mouse(tt.ev))
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Mouse() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMouseCarriesTarget(t *testing.T) {
	n := NewNormalizer(false)
	evs := n.Mouse(MouseEvent{Kind: MouseDown, X: 1, Y: 2, Target: Node("a")})
	if len(evs) != 1 || evs[0].Target != Node("a") {
		t.Fatalf("events = %+v", evs)
	}
	if n.Mouse(MouseEvent{Kind: MouseCancel})[0].Type != PanEnd {
		t.Error("cancel should end the pan")
	}
}

func TestTouchPanThenPinch(t *testing.T) {
	n := NewNormalizer(false)
	one := []Touch{{ID: 1, X: 0, Y: 0}}
	two := []Touch{{ID: 1, X: 0, Y: 0}, {ID: 2, X: 30, Y: 40}}
	wider := []Touch{{ID: 1, X: 0, Y: 0}, {ID: 2, X: 60, Y: 80}}

	steps := []struct {
		ev   TouchEvent
		want []EventType
	}{
		{TouchEvent{Kind: TouchStart, Touches: one}, []EventType{PanStart}},
		{TouchEvent{Kind: TouchMove, Touches: one}, []EventType{PanMove}},
		{TouchEvent{Kind: TouchStart, Touches: two}, []EventType{PinchStart}},
		{TouchEvent{Kind: TouchMove, Touches: wider}, []EventType{PinchMove}},
		{TouchEvent{Kind: TouchEnd, Touches: one}, []EventType{PinchEnd}},
		{TouchEvent{Kind: TouchMove, Touches: one}, nil},
		{TouchEvent{Kind: TouchEnd}, nil},
		{TouchEvent{Kind: TouchStart, Touches: one}, []EventType{PanStart}},
		{TouchEvent{Kind: TouchEnd}, []EventType{PanEnd}},
	}
	for i, s := range steps {
		got := types(n.Touch(s.ev))
		if len(got) == 0 && len(s.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, s.want) {
			t.Errorf("step %d: Touch() = %v, want %v", i, got, s.want)
		}
	}
}

func TestTouchPinchDistance(t *testing.T) {
	n := NewNormalizer(false)
	evs := n.Touch(TouchEvent{Kind: TouchStart, Touches: []Touch{{X: 0, Y: 0}, {X: 30, Y: 40}}})
	if len(evs) != 1 || evs[0].Distance != 50 {
		t.Fatalf("events = %+v, want distance 50", evs)
	}
	if evs[0].X != 15 || evs[0].Y != 20 {
		t.Errorf("center = (%v,%v), want (15,20)", evs[0].X, evs[0].Y)
	}
}

func TestTouchCancelEndsEverything(t *testing.T) {
	n := NewNormalizer(false)
	n.Touch(TouchEvent{Kind: TouchStart, Touches: []Touch{{X: 0}, {X: 10}}})
	got := types(n.Touch(TouchEvent{Kind: TouchCancel, Touches: []Touch{{X: 0}, {X: 10}}}))
	if !reflect.DeepEqual(got, []EventType{PinchEnd}) {
		t.Errorf("cancel = %v, want [PinchEnd]", got)
	}
}

func TestWheel(t *testing.T) {
	tests := []struct {
		name     string
		modifier bool
		ev       WheelEvent
		want     float64
		emitted  bool
	}{
		{"UpZoomsIn", false, WheelEvent{DeltaY: -3}, 1, true},
		{"DownZoomsOut", false, WheelEvent{DeltaY: 100}, -1, true},
		{"ZeroDelta", false, WheelEvent{}, 0, false},
		{"ModifierRequired", true, WheelEvent{DeltaY: -1}, 0, false},
		{"CtrlWheel", true, WheelEvent{DeltaY: -1, Ctrl: true}, 1, true},
		{"CmdWheel", true, WheelEvent{DeltaY: 1, Meta: true}, -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evs := NewNormalizer(tt.modifier).Wheel(tt.ev)
			if !tt.emitted {
				if len(evs) != 0 {
					t.Errorf("Wheel() = %+v, want nothing", evs)
				}
				return
			}
			if len(evs) != 1 || evs[0].Type != ZoomDelta || evs[0].Delta != tt.want {
				t.Errorf("Wheel() = %+v, want delta %v", evs, tt.want)
			}
		})
	}
}

func TestRawEventJSON(t *testing.T) {
	var ev MouseEvent
	data := `{"kind":"down","x":3,"y":4,"button":"primary","target":{"kind":"node","node_id":"a"}}`
	if err := json.Unmarshal([]byte(data), &ev); err != nil {
		t.Fatal(err)
	}
	want := MouseEvent{Kind: MouseDown, X: 3, Y: 4, Button: ButtonPrimary, Target: Node("a")}
	if ev != want {
		t.Errorf("decoded %+v, want %+v", ev, want)
	}

	var te TouchEvent
	if err := json.Unmarshal([]byte(`{"kind":"cancel","touches":[]}`), &te); err != nil {
		t.Fatal(err)
	}
	if te.Kind != TouchCancel {
		t.Errorf("kind = %v, want cancel", te.Kind)
	}

	if err := json.Unmarshal([]byte(`{"kind":"hover"}`), &ev); err == nil {
		t.Error("unknown mouse kind should fail")
	}
}

func TestEventTypeString(t *testing.T) {
	if PinchMove.String() != "pinch_move" || EventType(99).String() != "unknown" {
		t.Error("unexpected EventType names")
	}
}
