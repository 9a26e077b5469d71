package entity

import (
	"context"
	"errors"
	"testing"

	"github.com/tidwall/gjson"
)

type staticPolicy bool

func (p staticPolicy) AllowPartials() bool { return bool(p) }

type fakeUsers struct {
	calls []int64
	err   error
}

func (f *fakeUsers) Get(ctx context.Context, id int64) (*testUser, error) {
	f.calls = append(f.calls, id)
	if f.err != nil {
		return nil, f.err
	}
	return &testUser{Base: Base{ID: id}, Name: "fetched"}, nil
}

func (f *fakeUsers) Partial(base Base, fragment gjson.Result) *testUser {
	return &testUser{Base: base, Name: fragment.Get("name").String()}
}

var parent = Ref{Kind: KindAsset, ID: 100}

func TestResolve_Partial(t *testing.T) {
	src := &fakeUsers{}
	payload := gjson.Parse(`{"owner": {"userId": 5, "name": "stub"}}`)

	u, err := Resolve(context.Background(), staticPolicy(true), src, parent, Embedded(payload, "owner", "userId"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != 5 || u.Name != "stub" {
		t.Errorf("got %+v, want id 5 named stub", u)
	}
	if len(src.calls) != 0 {
		t.Errorf("partial resolution made %d fetches, want 0", len(src.calls))
	}
}

func TestResolve_Fetch(t *testing.T) {
	src := &fakeUsers{}
	payload := gjson.Parse(`{"owner": {"id": 5, "name": "stub"}}`)

	u, err := Resolve(context.Background(), staticPolicy(false), src, parent, Embedded(payload, "owner"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Name != "fetched" {
		t.Errorf("Name = %q, want fetched", u.Name)
	}
	if len(src.calls) != 1 || src.calls[0] != 5 {
		t.Errorf("calls = %v, want [5]", src.calls)
	}
}

func TestResolve_FlatHasNoDisplayFields(t *testing.T) {
	src := &fakeUsers{}
	payload := gjson.Parse(`{"userId": 8, "name": "parent name"}`)

	u, err := Resolve(context.Background(), staticPolicy(true), src, parent, Flat(payload, "userId"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != 8 {
		t.Errorf("ID = %d, want 8", u.ID)
	}
	if u.Name != "" {
		t.Errorf("Name = %q, flat reference must not read parent fields", u.Name)
	}
}

func TestResolve_MissingID(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		field   func(gjson.Result) Field
	}{
		{name: "empty fragment", payload: `{"owner": {}}`, field: func(p gjson.Result) Field { return Embedded(p, "owner") }},
		{name: "absent fragment", payload: `{}`, field: func(p gjson.Result) Field { return Embedded(p, "owner") }},
		{name: "null flat id", payload: `{"userId": null}`, field: func(p gjson.Result) Field { return Flat(p, "userId") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, partials := range []bool{true, false} {
				src := &fakeUsers{}
				f := tt.field(gjson.Parse(tt.payload))

				_, err := Resolve(context.Background(), staticPolicy(partials), src, parent, f)
				if !errors.Is(err, ErrMissingReferenceID) {
					t.Fatalf("partials=%v: error = %v, want ErrMissingReferenceID", partials, err)
				}

				var refErr *ReferenceError
				if !errors.As(err, &refErr) {
					t.Fatalf("error is not a *ReferenceError: %T", err)
				}
				if refErr.Parent != parent {
					t.Errorf("Parent = %v, want %v", refErr.Parent, parent)
				}
				if len(src.calls) != 0 {
					t.Errorf("made %d fetches for a reference without id", len(src.calls))
				}
			}
		})
	}
}

func TestResolve_FetchError(t *testing.T) {
	boom := errors.New("boom")
	src := &fakeUsers{err: boom}
	payload := gjson.Parse(`{"owner": {"id": 5}}`)

	_, err := Resolve(context.Background(), staticPolicy(false), src, parent, Embedded(payload, "owner"))
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want wrapped boom", err)
	}
}

func TestResolveOptional(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		flat    bool
		wantNil bool
		wantErr bool
	}{
		{name: "absent", payload: `{}`, wantNil: true},
		{name: "null", payload: `{"ref": null}`, wantNil: true},
		{name: "flat zero", payload: `{"ref": 0}`, flat: true, wantNil: true},
		{name: "flat present", payload: `{"ref": 4}`, flat: true},
		{name: "embedded present", payload: `{"ref": {"id": 4}}`},
		{name: "embedded without id", payload: `{"ref": {}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := gjson.Parse(tt.payload)
			f := Embedded(p, "ref")
			if tt.flat {
				f = Flat(p, "ref")
			}

			u, err := ResolveOptional(context.Background(), staticPolicy(true), &fakeUsers{}, parent, f)
			if tt.wantErr {
				if !errors.Is(err, ErrMissingReferenceID) {
					t.Fatalf("error = %v, want ErrMissingReferenceID", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (u == nil) != tt.wantNil {
				t.Errorf("got %v, wantNil %v", u, tt.wantNil)
			}
		})
	}
}
