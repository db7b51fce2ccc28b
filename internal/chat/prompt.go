package chat

import (
	"encoding/json"
	"fmt"
	"strings"
)

// System prompts for the two model calls of a turn.
const (
	// ToolSelectionSystem biases the tool-selection call toward terse,
	// comment-free JSON.
	ToolSelectionSystem = "Please keep your answer as brief as possible. Do not add comments to your answer."

	// AnswerSystem frames the final answer around the returned tool results.
	AnswerSystem = "Please give a complete and detailed answer. You are a data analyst specialized in " +
		"extracting insights from the provided information. Use only the returned results to generate your response."
)

// ToolSelectionPrompt builds the prompt asking the model which tools, if
// any, to invoke for query. descriptorsJSON is the serialized registry and
// responseFormatJSON the exemplar array shape.
func ToolSelectionPrompt(descriptorsJSON, responseFormatJSON, query string) string {
	return fmt.Sprintf(`The response must be a JSON array.
Do not include one function in the JSON array if you don't have the necessary parameters.
Please create an array of JSON objects based on the following schema:
%s
You have these functions to invoke/call (call one or more if necessary):
%s
The user query is:
%s
Replace the values of the function parameters with the provided information from the user query.`,
		responseFormatJSON, descriptorsJSON, query)
}

// AnswerPrompt builds the final prompt from the conversation history, the
// joined tool results and the original query. When results exist the model
// is instructed to answer only from them.
func AnswerPrompt(history []Message, toolResults []string, query string) string {
	historyJSON, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		historyJSON = []byte("[]")
	}

	return fmt.Sprintf(`This is our conversation so far (if any):
%s
Tool results (if any):
%s
Please answer the following question considering only the provided tool results (if any):
%s
Do not try to answer with incomplete information.`,
		historyJSON, strings.Join(toolResults, "\n"), query)
}

// RAGPrompt builds the one-shot retrieval prompt used by ask: supporting
// excerpts first, then the question.
func RAGPrompt(context, query string) string {
	return fmt.Sprintf("I have this information:\n%s\nSo my question is:\n%s", context, query)
}
