package operative

import "fmt"

// EvaluationPrompt builds the instruction text sent with an evaluation job.
func EvaluationPrompt(url, task string) string {
	return fmt.Sprintf(`VISIT: %s AND YOUR MAIN GOAL IS: %s

Evaluate the UI / UX of the website. If you encounter any errors during your evaluation
(e.g., connection issues, page not loading, JavaScript errors), immediately stop the evaluation
and report back the specific error encountered.

If there are no errors and you can proceed with the evaluation, check for any problems with the UX
including not showing the correct content, or not being able to complete the task.
Please list the problems if found, otherwise state your findings and evaluation of the UX/UI.
`, url, task)
}
