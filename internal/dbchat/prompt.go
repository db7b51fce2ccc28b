package dbchat

import (
	"encoding/json"
	"fmt"

	"github.com/ragline/ragline/internal/chat"
)

// System prompts for the two model calls of a dbchat turn.
const (
	// SQLSystem keeps the generated statement free of commentary.
	SQLSystem = "Please keep your answer as brief as possible. Do not add comments to your answer."

	// AnswerSystem anchors the final answer to the returned rows.
	AnswerSystem = "The database results are always related to the user question."
)

// SQLPrompt asks the model to translate the user query into one Postgres
// SELECT over the introspected schema.
func SQLPrompt(schema []map[string]any, query string) string {
	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		schemaJSON = []byte("[]")
	}

	return fmt.Sprintf(`The response must be a Postgresql SQL query.
Please create a Postgresql SQL query based on the following database schema:
%s
The user query is:
%s
Transform the user query in a Postgresql SQL query based on the provided database schema.
Prioritize the use of case insensitive SQL queries using the ILIKE operator.
Limit the returned records to 100.`, schemaJSON, query)
}

// AnswerPrompt builds the final prompt from history, the query and the rows
// the statement returned. The rows are already on the user's screen, so the
// model is told not to repeat them.
func AnswerPrompt(history []chat.Message, query string, rows []map[string]any) string {
	historyJSON, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		historyJSON = []byte("[]")
	}
	rowsJSON, err := json.Marshal(rows)
	if err != nil {
		rowsJSON = []byte("[]")
	}

	return fmt.Sprintf(`This is our conversation so far:
%s
This is the user question:
%s
Database result based on the user question:
%s
The database result are already displayed to the user, so you don't need to repeat it in your answer.
Do not answer with your internal knowledge.`, historyJSON, query, rowsJSON)
}
