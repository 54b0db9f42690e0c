package backend

import "fmt"

// CompletionPrompt asks for a single shell command completing partial.
func CompletionPrompt(partial string) string {
	return fmt.Sprintf(`Convert this to a shell command. Return only the command, nothing else.

Input: %s

Examples:
- "pnpm run" → "pnpm run dev"
- "git status" → "git status"
- "list files" → "ls -la"
- "find a file named script.py" → "find . -name 'script.py'"
- "search for text in files" → "grep -r 'text' ."
- "show running processes" → "ps aux"
- "check disk usage" → "df -h"
- "install package" → "npm install"
- "git add all files" → "git add ."

Command:`, partial)
}

// QuestionPrompt asks for a multiple-choice question, as JSON, whose answer
// is command.
func QuestionPrompt(command string) string {
	return fmt.Sprintf(`Create a Duolingo-style quiz question where the answer is this shell command: %[1]s

Generate a question that tests understanding of what this command does or when to use it.

Format your response as JSON with these fields:
- "question": The quiz question (clear and educational)
- "correct_answer": The shell command (exactly: %[1]s)
- "wrong_options": Array of 3 plausible but incorrect commands
- "explanation": Brief explanation of what the correct command does

Example format:
{
  "question": "How would you find all files named 'main' in the current directory and subdirectories?",
  "correct_answer": "find . -name '*main*'",
  "wrong_options": [
    "grep -r main .",
    "ls -la *main*",
    "locate main"
  ],
  "explanation": "The find command with -name flag searches for files by name pattern recursively"
}

Command to create question for: %[1]s
`, command)
}
