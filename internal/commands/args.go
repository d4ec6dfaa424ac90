package commands

import (
	"fmt"
	"strconv"
	"strings"

	"prodexa/internal/resource"
	"prodexa/internal/tasks"
)

// parseID reads the single id argument of a command.
func parseID(args []string, what string) (resource.ID, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("%s id required", what)
	}
	if len(args) > 1 {
		return "", fmt.Errorf("expected one %s id, got %d arguments", what, len(args))
	}
	id := strings.TrimSpace(args[0])
	if id == "" {
		return "", fmt.Errorf("%s id required", what)
	}
	return resource.ID(id), nil
}

// parsePriority accepts 1-3 or low, medium and high. Empty means unset.
func parsePriority(s string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return 0, nil
	case "low", "l":
		return tasks.PriorityLow, nil
	case "medium", "med", "m":
		return tasks.PriorityMedium, nil
	case "high", "h":
		return tasks.PriorityHigh, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < tasks.PriorityLow || n > tasks.PriorityHigh {
		return 0, fmt.Errorf("invalid priority %q (want low, medium, high or 1-3)", s)
	}
	return n, nil
}
