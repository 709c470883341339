package models

import "encoding/json"

// TestCase is one judge test: call the player's solution with Input and
// compare the result against Expected by deep equality. Expected is required;
// a case without an explicit expected value is rejected at catalog load.
type TestCase struct {
	Input    []json.RawMessage `json:"input"`
	Expected json.RawMessage   `json:"expected_output"`
}

type Problem struct {
	Id          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	Difficulty  string            `json:"difficulty"`
	TestCases   []TestCase        `json:"test_cases"`
	StarterCode map[string]string `json:"starter_code"`
}
