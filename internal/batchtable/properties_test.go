package batchtable

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestPropertiesMarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		setup func(p *Properties) error
		want  string
	}{
		{
			name:  "empty",
			setup: func(p *Properties) error { return nil },
			want:  `{}`,
		},
		{
			name: "insertion order",
			setup: func(p *Properties) error {
				if err := p.Set("id", []int{1, 2}); err != nil {
					return err
				}
				return p.Set("h", []float64{3.5, 4})
			},
			want: `{"id":[1,2],"h":[3.5,4]}`,
		},
		{
			name: "three properties",
			setup: func(p *Properties) error {
				for _, name := range []string{"c", "a", "b"} {
					if err := p.Set(name, name); err != nil {
						return err
					}
				}
				return nil
			},
			want: `{"c":"c","a":"a","b":"b"}`,
		},
		{
			name: "raw values are compacted",
			setup: func(p *Properties) error {
				p.SetRaw("RTC_CENTER", json.RawMessage("[ 1, 2,\n 3 ]"))
				p.SetRaw("name", json.RawMessage(`{ "first": "a b" }`))
				return nil
			},
			want: `{"RTC_CENTER":[1,2,3],"name":{"first":"a b"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProperties()
			if err := tt.setup(p); err != nil {
				t.Fatal(err)
			}
			got, err := p.MarshalJSON()
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != tt.want {
				t.Errorf("MarshalJSON() = %s, want %s", got, tt.want)
			}
			encoded, err := json.Marshal(p)
			if err != nil {
				t.Fatal(err)
			}
			if string(encoded) != tt.want {
				t.Errorf("json.Marshal() = %s, want %s", encoded, tt.want)
			}
		})
	}
}

func TestPropertiesMarshalInvalidRaw(t *testing.T) {
	p := NewProperties()
	p.SetRaw("broken", json.RawMessage(`[1,`))
	if _, err := p.MarshalJSON(); err == nil {
		t.Error("expected an error for an invalid raw value")
	}
}

func TestPropertiesUnmarshalKeepsOrder(t *testing.T) {
	p := NewProperties()
	if err := p.UnmarshalJSON([]byte(`{"z": [1], "a": {"x": 2}, "m": "s"}`)); err != nil {
		t.Fatal(err)
	}
	got, err := p.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"z":[1],"a":{"x":2},"m":"s"}`; string(got) != want {
		t.Errorf("got %s, want %s", got, want)
	}
}
