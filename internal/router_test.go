package internal

import "testing"

func TestRouteSet_Resolve(t *testing.T) {
	hit := func(name string, got *string) HandlerFunc {
		return func(*Context) error {
			*got = name
			return nil
		}
	}

	t.Run("exact match", func(t *testing.T) {
		var got string
		table := newRouteTable()
		table.register("/home", hit("home", &got))
		table.register("*", hit("fallback", &got))

		h, ok := table.freeze().resolve("/home")
		if !ok {
			t.Fatal("resolve(/home) found nothing")
		}
		_ = h(nil)
		if got != "home" {
			t.Errorf("resolved %q, want home", got)
		}
	})

	t.Run("fallback for unknown path", func(t *testing.T) {
		var got string
		table := newRouteTable()
		table.register("/home", hit("home", &got))
		table.register("*", hit("fallback", &got))

		h, ok := table.freeze().resolve("/home/")
		if !ok {
			t.Fatal("resolve(/home/) found nothing")
		}
		_ = h(nil)
		if got != "fallback" {
			t.Errorf("resolved %q, want fallback", got)
		}
	})

	t.Run("not found without fallback", func(t *testing.T) {
		table := newRouteTable()
		table.register("/home", hit("home", new(string)))

		if _, ok := table.freeze().resolve("/xyz"); ok {
			t.Error("resolve(/xyz) found a handler, want none")
		}
	})

	t.Run("last registration wins", func(t *testing.T) {
		var got string
		table := newRouteTable()
		table.register("/", hit("first", &got))
		table.register("/", hit("second", &got))

		h, _ := table.freeze().resolve("/")
		_ = h(nil)
		if got != "second" {
			t.Errorf("resolved %q, want second", got)
		}
	})

	t.Run("frozen set ignores later registrations", func(t *testing.T) {
		table := newRouteTable()
		set := table.freeze()
		table.register("/late", hit("late", new(string)))

		if _, ok := set.resolve("/late"); ok {
			t.Error("frozen set observed a later registration")
		}
	})
}
