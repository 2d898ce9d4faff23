package telegram

import (
	"strconv"
	"strings"
)

// Callback action constants.
const (
	actionAnswer   = "ans"
	actionQuiz     = "quiz"
	actionMastery  = "mastery"
	actionProgress = "progress"
)

// Quiz sub-actions.
const (
	quizStart = "start"
)

// callbackData represents structured callback data.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

// decodeCallback parses callback data string.
func decodeCallback(data string) callbackData {
	parts := strings.Split(data, ":")
	if len(parts) == 0 {
		return callbackData{Raw: data}
	}

	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

// buildAnswerCallback builds callback data for picking option optionIndex of question questionIndex.
func buildAnswerCallback(questionIndex, optionIndex int) string {
	return callbackData{
		Action: actionAnswer,
		Params: []string{
			strconv.Itoa(questionIndex),
			strconv.Itoa(optionIndex),
		},
	}.encode()
}

// parseAnswerCallback extracts the question and option indexes of an answer callback.
func parseAnswerCallback(cd callbackData) (questionIndex, optionIndex int, ok bool) {
	if cd.Action != actionAnswer || len(cd.Params) != 2 {
		return 0, 0, false
	}
	q, err1 := strconv.Atoi(cd.Params[0])
	o, err2 := strconv.Atoi(cd.Params[1])
	if err1 != nil || err2 != nil || q < 0 || o < 0 {
		return 0, 0, false
	}
	return q, o, true
}

// buildQuizStartCallback builds callback data for starting a quiz session.
func buildQuizStartCallback() string {
	return callbackData{
		Action: actionQuiz,
		Params: []string{quizStart},
	}.encode()
}

// buildMasteryCallback builds callback data for opening the word mastery view.
func buildMasteryCallback() string {
	return actionMastery
}

// buildProgressCallback builds callback data for opening the progress view.
func buildProgressCallback() string {
	return actionProgress
}
