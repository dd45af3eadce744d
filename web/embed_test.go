package web

import (
	"io/fs"
	"testing"
)

func TestStaticFS(t *testing.T) {
	for _, name := range []string{"style.css", "app.js"} {
		data, err := fs.ReadFile(StaticFS(), name)
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if len(data) == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}
