package data

import (
	"reflect"
	"testing"
)

func TestNewPrimitives(t *testing.T) {
	tests := []struct {
		input    interface{}
		expected Value
	}{
		{nil, Null{}},
		{true, Bool(true)},
		{int(5), Int(5)},
		{int64(-5), Int(-5)},
		{uint8(255), Int(255)},
		{3.5, Float(3.5)},
		{float32(0), Float(0)},
		{"str", String("str")},
		{String("already"), String("already")},
	}
	for _, test := range tests {
		if actual := New(test.input); !reflect.DeepEqual(actual, test.expected) {
			t.Errorf("New(%#v): expected %#v, got %#v", test.input, test.expected, actual)
		}
	}
}

func TestNewComposites(t *testing.T) {
	var v = New(map[string]interface{}{
		"name":  "Lee",
		"langs": []string{"go", "soy"},
		"stats": map[string]interface{}{"visits": 3},
	})
	m, ok := v.(Map)
	if !ok {
		t.Fatalf("expected Map, got %T", v)
	}
	if m.Key("name").String() != "Lee" {
		t.Errorf("name: got %q", m.Key("name").String())
	}
	langs, ok := m.Key("langs").(List)
	if !ok || len(langs) != 2 || langs[0].String() != "go" {
		t.Errorf("langs: got %#v", m.Key("langs"))
	}
	stats, ok := m.Key("stats").(Map)
	if !ok || stats.Key("visits").String() != "3" {
		t.Errorf("stats: got %#v", m.Key("stats"))
	}
}

func TestNewStruct(t *testing.T) {
	type user struct {
		Name  string
		Age   int
		admin bool
	}
	v := New(&user{Name: "Kim", Age: 30, admin: true})
	m, ok := v.(Map)
	if !ok {
		t.Fatalf("expected Map, got %T", v)
	}
	if m.Key("Name").String() != "Kim" || m.Key("Age").String() != "30" {
		t.Errorf("got %#v", m)
	}
	if _, ok := m.Key("admin").(Undefined); !ok {
		t.Error("unexported field should not convert")
	}
}

func TestNewNilSlice(t *testing.T) {
	var s []string
	if _, ok := New(s).(Null); !ok {
		t.Errorf("nil slice should be Null, got %#v", New(s))
	}
}

func TestNewUnsupported(t *testing.T) {
	if _, ok := New(make(chan int)).(Undefined); !ok {
		t.Error("channel should convert to Undefined, not panic")
	}
}
