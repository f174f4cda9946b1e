package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/taskkeeper/internal/client/client"
	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
	"github.com/dmitrijs2005/taskkeeper/internal/client/services"
)

var errUsage = errors.New("usage")

func (a *App) usage(text string) error {
	fmt.Fprintln(a.out, "Usage:", text)
	return errUsage
}

func (a *App) List(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	list, err := a.taskService.List(ctx)
	if err != nil {
		return a.report(err)
	}
	a.printTasks(list)
	return nil
}

func (a *App) printTasks(list []models.Task) {
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No tasks")
		return
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tURGENCY\tDESCRIPTION")
	for _, t := range list {
		done := " "
		if t.Completed {
			done = "x"
		}
		fmt.Fprintf(tw, "%s\t[%s]\t%s\t%s\n", t.ID, done, t.Urgency, t.Description)
	}
	_ = tw.Flush()
}

// Add creates a task. "add <urgency> <description...>" skips the prompts.
func (a *App) Add(ctx context.Context, args []string) error {
	var urgency, description string
	if len(args) >= 2 {
		urgency, description = args[0], strings.Join(args[1:], " ")
	} else {
		var err error
		if description, err = getSimpleText(a.reader, "Enter description", a.out); err != nil {
			return err
		}
		prompt := fmt.Sprintf("Enter urgency (%s)", strings.Join(services.Urgencies, "/"))
		if urgency, err = getSimpleText(a.reader, prompt, a.out); err != nil {
			return err
		}
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	task, err := a.taskService.Add(ctx, description, urgency)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Added %s\n", task.ID)
	return nil
}

// Done toggles completion of the task with the given id.
func (a *App) Done(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("done <id>")
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	return a.reportTask(args[0], a.taskService.Toggle(ctx, args[0]), "Toggled")
}

func (a *App) Urgency(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return a.usage("urgency <id> <" + strings.Join(services.Urgencies, "|") + ">")
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	return a.reportTask(args[0], a.taskService.SetUrgency(ctx, args[0], args[1]), "Updated")
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("delete <id>")
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	return a.reportTask(args[0], a.taskService.Delete(ctx, args[0]), "Deleted")
}

func (a *App) reportTask(id string, err error, verb string) error {
	if errors.Is(err, client.ErrNotFound) {
		fmt.Fprintf(a.out, "No task with id %s\n", id)
		return err
	}
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "%s %s\n", verb, id)
	return nil
}

func (a *App) Reset(ctx context.Context) error {
	answer, err := getSimpleText(a.reader, "Remove all tasks? (y/N)", a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.taskService.Reset(ctx); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "All tasks removed")
	return nil
}

// Stats prints the completion percentage, overall and per urgency, or for a
// single urgency when one is given.
func (a *App) Stats(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return a.usage("stats [urgency]")
	}
	var urgency string
	if len(args) == 1 {
		urgency = args[0]
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	c, err := a.taskService.Completion(ctx, urgency)
	if err != nil {
		return a.report(err)
	}

	if c.Urgency != "" {
		fmt.Fprintf(a.out, "%s: %.1f%% complete\n", c.Urgency, c.Percentage)
		return nil
	}

	fmt.Fprintf(a.out, "all: %.1f%% complete\n", c.Percentage)
	levels := make([]string, 0, len(c.Summary.ByUrgency))
	for u := range c.Summary.ByUrgency {
		levels = append(levels, u)
	}
	sort.Strings(levels)
	for _, u := range levels {
		fmt.Fprintf(a.out, "  %s: %.1f%%\n", u, c.Summary.ByUrgency[u])
	}
	return nil
}
