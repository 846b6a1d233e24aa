package prompts

import _ "embed"

// Embedded prompt files

//go:embed answer_system.txt
var answerSystem string

//go:embed no_sources.txt
var noSources string

func AnswerSystem() string { return answerSystem }
func NoSources() string    { return noSources }
