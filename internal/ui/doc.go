// Package ui provides the terminal editor for quill.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Model owns no note state of its own: every
// render pulls a draft.View from the controller, and every keystroke that
// edits or navigates is forwarded to the controller. The title and content
// inputs are realigned with the draft whenever the controller replaces it,
// for example after switching notes or discarding an edit.
//
// # Package Structure
//
//   - app.go: Model, message routing and the Run entry point
//   - notifier.go: bridges controller change callbacks into program messages
//   - modal.go: unsaved-changes and confirmation dialogs
//   - menu.go: the notes menu (switch, create, theme, copy, clear)
//   - header.go: header, status line and command bar
//   - help.go: keyboard shortcut overlay
//   - theme.go, style_helpers.go: Nightfox/Dawnfox palettes and style helpers
//
// # Event Flow
//
//  1. Run starts the program and forwards controller notifications as
//     controllerChangedMsg.
//  2. Edits call SetTitle/SetContent; navigation calls Select, Add, Delete,
//     ClearAll or Quit.
//  3. When the controller answers with a Decision, the unsaved-changes modal
//     resolves it with Discard, Save or Cancel.
//  4. A periodic tick keeps the "saved ... ago" text current.
//
// # Key Bindings
//
//   - Ctrl+S: Save
//   - Ctrl+N: New note
//   - Ctrl+D: Delete note
//   - Ctrl+Y: Copy note
//   - Ctrl+O: Notes menu
//   - Ctrl+T: Toggle theme
//   - Tab: Switch between title and content
//   - F1: Help
//   - Ctrl+Q or Ctrl+C: Quit
package ui
