package render

import (
	"sync"
	"testing"
)

func TestKeyOf(t *testing.T) {
	base := DefaultOptions()

	if keyOf(base) == keyOf(base.WithWidth(100)) {
		t.Error("different widths should produce different keys")
	}
	if keyOf(base) == keyOf(base.withStyle("light")) {
		t.Error("different styles should produce different keys")
	}
	if keyOf(base) != keyOf(DefaultOptions()) {
		t.Error("same options should produce the same key")
	}
	if keyOf(base) != keyOf(base.WithMarkdown(true)) {
		t.Error("the markdown switch does not change glamour output and should share a pool")
	}
}

func TestCheckoutReuses(t *testing.T) {
	t.Setenv("GLAMOUR_STYLE", "")
	clearCache()
	defer clearCache()

	opts := DefaultOptions()

	r1, err := checkout(opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r1 == nil {
		t.Fatal("expected non-nil renderer")
	}
	if cacheSize() != 1 {
		t.Errorf("expected 1 key, got %d", cacheSize())
	}

	checkin(opts, r1)
	checkin(opts, nil)

	r2, err := checkout(opts)
	if err != nil || r2 == nil {
		t.Fatalf("second checkout failed: %v", err)
	}
	if r2 != r1 {
		t.Error("an idle renderer should be reused")
	}

	clearCache()
	if cacheSize() != 0 {
		t.Errorf("expected 0 keys after clear, got %d", cacheSize())
	}
}

func TestPoolConcurrency(t *testing.T) {
	t.Setenv("GLAMOUR_STYLE", "")
	clearCache()
	defer clearCache()

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			opts := DefaultOptions().WithWidth(60 + i%4*10)
			if _, err := Markdown("**Brand Names:**\n- Bean There", opts); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent render failed: %v", err)
	}
	if cacheSize() != 4 {
		t.Errorf("expected 4 keys, got %d", cacheSize())
	}
}

func TestNewRenderer_InvalidStyle(t *testing.T) {
	if _, err := newRenderer(DefaultOptions().withStyle("no_such_style_path")); err == nil {
		t.Error("expected error for invalid style")
	}
}
