package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ikiguide/ikiguide/internal/client"
	"github.com/ikiguide/ikiguide/internal/config"
	"github.com/ikiguide/ikiguide/internal/ikigai"
	"github.com/ikiguide/ikiguide/internal/session"
)

func newRunCmd(opts *appOptions) *cobra.Command {
	var questionsFile string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Answer the four questions and view your ikigai paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			flow, _, err := newFlow(opts)
			if err != nil {
				return err
			}
			questions, err := config.LoadQuestions(questionsFile)
			if err != nil {
				return err
			}
			r := &runner{
				flow:      flow,
				questions: questions,
				in:        bufio.NewScanner(cmd.InOrStdin()),
				out:       cmd.OutOrStdout(),
			}
			return r.run(cmd.Context(), opts.sessionID)
		},
	}

	cmd.Flags().StringVar(&questionsFile, "questions", "", "YAML file overriding the question prompts")
	return cmd
}

type runner struct {
	flow      *client.Flow
	questions config.QuestionSet
	in        *bufio.Scanner
	out       io.Writer
}

func (r *runner) run(ctx context.Context, explicitID string) error {
	id, step, err := r.resume(ctx, explicitID)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Session %s\n\n", id)

	for step <= session.QuestionCount {
		step, id, err = r.ask(ctx, id, step)
		if err != nil {
			return err
		}
	}

	if !r.showResults(ctx, id) {
		// Failure already printed its message; the flow restarts from the
		// introduction rather than offering to email unseen results.
		return nil
	}
	return r.offerEmail(ctx)
}

// resume resolves the active session per the mirror precedence and picks the
// first unanswered question. An unknown or rejected session starts fresh.
func (r *runner) resume(ctx context.Context, explicitID string) (string, int, error) {
	id := r.flow.Resolve(explicitID)
	if id != "" {
		if err := r.flow.Validate(ctx, id); err != nil {
			id = ""
		}
	}

	if id == "" {
		fresh, err := r.flow.Start(ctx)
		if err != nil {
			return "", 0, fmt.Errorf("could not start a session: %w", err)
		}
		return fresh, 1, nil
	}

	step := 1
	for step <= session.QuestionCount && r.flow.Prefill(id, step) != "" {
		step++
	}
	if step > session.QuestionCount {
		step = session.QuestionCount
	}
	return id, step, nil
}

// ask prompts for one question. "back" navigates to the previous step
// without validation; empty input is rejected locally and re-prompted.
func (r *runner) ask(ctx context.Context, id string, step int) (int, string, error) {
	question, _ := r.questions.ByID(step)
	fmt.Fprintf(r.out, "Question %d of %d\n%s\n", step, session.QuestionCount, question.Prompt)
	if prefill := r.flow.Prefill(id, step); prefill != "" {
		fmt.Fprintf(r.out, "(current answer: %s)\n", prefill)
	}
	if step > 1 {
		fmt.Fprintln(r.out, `(type "back" to return to the previous question)`)
	}
	fmt.Fprint(r.out, "> ")

	if !r.in.Scan() {
		return step, id, fmt.Errorf("input closed")
	}
	text := r.in.Text()

	if strings.EqualFold(strings.TrimSpace(text), "back") && step > 1 {
		return r.flow.Previous(step), id, nil
	}

	next, done, err := r.flow.Submit(ctx, id, step, text)
	switch {
	case errors.Is(err, client.ErrEmptyAnswer):
		fmt.Fprintln(r.out, "Please enter an answer before continuing.")
		return step, id, nil
	case errors.Is(err, client.ErrInvalidSession):
		fmt.Fprintln(r.out, "Your session expired; starting over.")
		fresh, startErr := r.flow.Start(ctx)
		if startErr != nil {
			return step, id, startErr
		}
		return 1, fresh, nil
	case err != nil:
		return step, id, err
	}

	if done {
		return session.QuestionCount + 1, id, nil
	}
	return next, id, nil
}

// showResults renders the results view. It reports false when the fetch
// failed and the flow should end instead of moving on to the email step.
func (r *runner) showResults(ctx context.Context, id string) bool {
	view, err := r.flow.Results(ctx, id)
	if err != nil {
		fmt.Fprintln(r.out, resultsFailureMessage(err))
		return false
	}

	fmt.Fprintln(r.out, "\nYour Inputs")
	for step := 1; step <= session.QuestionCount; step++ {
		q, _ := r.questions.ByID(step)
		fmt.Fprintf(r.out, "  %s: %s\n", q.Key, view.Inputs[step])
	}

	if len(view.Entries) == 0 {
		fmt.Fprintln(r.out, "\nNo paths were generated for your answers.")
		return true
	}

	fmt.Fprintln(r.out, "\nYour Ikigai Paths")
	n := 0
	for _, entry := range view.Entries {
		if entry.Kind == ikigai.KindSummary {
			fmt.Fprintf(r.out, "\nSummary\n  %s\n", entry.Description)
			continue
		}
		n++
		fmt.Fprintf(r.out, "\n%d. %s\n   %s\n", n, entry.Title, entry.Description)
	}
	return true
}

// resultsFailureMessage keeps the three failure shapes distinguishable:
// backend status, no response, and everything else.
func resultsFailureMessage(err error) string {
	var statusErr *client.StatusError
	switch {
	case errors.Is(err, client.ErrIncomplete):
		return "Your session is missing answers; please start again."
	case errors.Is(err, client.ErrInvalidSession):
		return "Your session is no longer valid; please start again."
	case errors.As(err, &statusErr):
		return fmt.Sprintf("The server could not generate results (%s); please start again.", statusErr.Error())
	case strings.Contains(err.Error(), "no response"):
		return "Could not reach the server; please check your connection and start again."
	default:
		return fmt.Sprintf("Something went wrong fetching results (%v); please start again.", err)
	}
}

// offerEmail runs the dispatch loop: validate locally, send, allow retries.
func (r *runner) offerEmail(ctx context.Context) error {
	dispatch := r.flow.EmailDispatch()

	for {
		fmt.Fprint(r.out, "\nEmail these results to yourself? Enter an address (or press Enter to skip): ")
		if !r.in.Scan() {
			return nil
		}
		address := strings.TrimSpace(r.in.Text())
		if address == "" {
			return nil
		}

		err := dispatch.Send(ctx, address)
		if errors.Is(err, client.ErrInvalidAddress) {
			fmt.Fprintln(r.out, "That does not look like a valid email address.")
			continue
		}
		if err != nil {
			fmt.Fprintf(r.out, "Sending failed (attempt %d): %v\n", dispatch.Attempts, err)
			continue
		}

		fmt.Fprintf(r.out, "Results sent to %s.\n", address)
		return nil
	}
}
