package about

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestViewMentionsContract(t *testing.T) {
	m := Model{Network: "Rinkeby", Contract: "0xd9145CCE52D386f254917e481eB44e9943F39138"}
	v := ansi.Strip(m.View(120))
	for _, want := range []string{"lucky", "chainlink", "Rinkeby", "esc:close"} {
		if !strings.Contains(v, want) {
			t.Errorf("view should contain %q", want)
		}
	}
}
