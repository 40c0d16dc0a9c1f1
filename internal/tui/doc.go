// Package tui implements the terminal user interface for tapcalc.
//
// Built using the Bubble Tea framework, it follows the Elm architecture with
// immutable state updates and a Model-Update-View pattern. Two screens are
// provided:
//   - Calculator: a local display driven by terminal key presses, with an
//     optional keypad, recent evaluations and an expression input line
//   - Discovery: an mDNS scan for tapcalc servers on the local network
//
// # Framework Components
//
//   - bubbles/textinput: expression entry replayed key by key
//   - bubbles/spinner: scan indicator
//   - bubbles/list: discovered servers with filtering
//   - bubbles/help and bubbles/key: context-aware help
//   - lipgloss: styling and layout
//
// # Usage Example
//
//	m, err := tui.RunCalculator(tui.Options{
//	    Calculator: calc.DefaultOptions(),
//	    ShowKeypad: true,
//	    ShowHelp:   true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(m.Display.Text())
//
// # Key Bindings
//
// Terminal keys are translated to browser key names before they reach the
// display, so Enter and = evaluate, Backspace deletes, Esc and c clear.
// Tab opens the input line, ? toggles the full help and q quits.
package tui
