package editor

// Command is the closed set of operations Dispatch understands. Keymaps
// refer to commands by name.
type Command int

const (
	CmdNone Command = iota

	CmdMoveLeft
	CmdMoveRight
	CmdMoveUp
	CmdMoveDown
	CmdLineStart
	CmdLineEnd
	CmdFirstNonBlank
	CmdWordForward
	CmdWordBackward
	CmdWordEnd
	CmdFileStart
	CmdFileEnd
	CmdGotoLine
	CmdMatchBrackets
	CmdNextUnmatchedParen
	CmdPrevUnmatchedParen
	CmdNextUnmatchedBrace
	CmdPrevUnmatchedBrace

	CmdUndo
	CmdRedo
	CmdAppend
	CmdAppendLineEnd
	CmdEnterInsert
	CmdInsertLineStart
	CmdOpenBelow
	CmdOpenAbove
	CmdDeleteLineStart
	CmdYank
	CmdPaste
	CmdPasteBefore
	CmdPasteDelete
	CmdDeleteWordLeft
	CmdBackspace
	CmdDeleteChar
	CmdChange
	CmdNewline
	CmdToggleSelect
	CmdExtendLine
	CmdToggleBlockSelect
	CmdEnterNormal
	CmdBreakUndoGroup

	CmdCompletionNext
	CmdCompletionPrev
	CmdCompletionSelect
)

var commandNames = map[Command]string{
	CmdMoveLeft:           "move_left",
	CmdMoveRight:          "move_right",
	CmdMoveUp:             "move_up",
	CmdMoveDown:           "move_down",
	CmdLineStart:          "line_start",
	CmdLineEnd:            "line_end",
	CmdFirstNonBlank:      "first_non_blank",
	CmdWordForward:        "word_forward",
	CmdWordBackward:       "word_backward",
	CmdWordEnd:            "word_end",
	CmdFileStart:          "file_start",
	CmdFileEnd:            "file_end",
	CmdGotoLine:           "goto_line",
	CmdMatchBrackets:      "match_brackets",
	CmdNextUnmatchedParen: "next_unmatched_paren",
	CmdPrevUnmatchedParen: "prev_unmatched_paren",
	CmdNextUnmatchedBrace: "next_unmatched_brace",
	CmdPrevUnmatchedBrace: "prev_unmatched_brace",
	CmdUndo:               "undo",
	CmdRedo:               "redo",
	CmdAppend:             "append",
	CmdAppendLineEnd:      "append_line_end",
	CmdEnterInsert:        "enter_insert",
	CmdInsertLineStart:    "insert_line_start",
	CmdOpenBelow:          "open_below",
	CmdOpenAbove:          "open_above",
	CmdDeleteLineStart:    "delete_line_start",
	CmdYank:               "yank",
	CmdPaste:              "paste",
	CmdPasteBefore:        "paste_before",
	CmdPasteDelete:        "paste_delete",
	CmdDeleteWordLeft:     "delete_word_left",
	CmdBackspace:          "backspace",
	CmdDeleteChar:         "delete_char",
	CmdChange:             "change",
	CmdNewline:            "newline",
	CmdToggleSelect:       "toggle_select",
	CmdExtendLine:         "extend_line",
	CmdToggleBlockSelect:  "toggle_block_select",
	CmdEnterNormal:        "enter_normal",
	CmdBreakUndoGroup:     "break_undo_group",
	CmdCompletionNext:     "completion_next",
	CmdCompletionPrev:     "completion_prev",
	CmdCompletionSelect:   "completion_select",
}

var commandsByName = func() map[string]Command {
	m := make(map[string]Command, len(commandNames))
	for cmd, name := range commandNames {
		m[name] = cmd
	}
	return m
}()

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "none"
}

// ParseCommand looks a command up by its keymap name.
func ParseCommand(name string) (Command, bool) {
	cmd, ok := commandsByName[name]
	return cmd, ok
}

func (c Command) isMotion() bool {
	return c >= CmdMoveLeft && c <= CmdPrevUnmatchedBrace
}
