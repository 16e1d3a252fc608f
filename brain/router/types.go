package router

// Intent is a classified category of user request mapped to an executable
// action.
type Intent string

const (
	IntentMusicPlay     Intent = "MUSIC_PLAY"
	IntentWebSearch     Intent = "WEB_SEARCH"
	IntentOpenApp       Intent = "OPEN_APP"
	IntentSystemControl Intent = "SYSTEM_CONTROL"
	IntentFileOperation Intent = "FILE_OPERATION"
	IntentChat          Intent = "CHAT"
)

// knownIntents is the closed taxonomy the planner is allowed to emit.
var knownIntents = map[Intent]bool{
	IntentMusicPlay:     true,
	IntentWebSearch:     true,
	IntentOpenApp:       true,
	IntentSystemControl: true,
	IntentFileOperation: true,
	IntentChat:          true,
}

// Task is one actionable unit extracted from an utterance.
type Task struct {
	Intent   Intent            `json:"intent"`
	Entities map[string]string `json:"entities"`
}

// Kind discriminates the routing decision variants.
type Kind string

const (
	// KindReflex is a terminal pattern-matched fact; no model involved.
	KindReflex Kind = "REFLEX"
	// KindCommand is a single actionable task.
	KindCommand Kind = "COMMAND"
	// KindBatch is an ordered sequence of tasks from one utterance.
	KindBatch Kind = "BATCH"
	// KindChat forwards the utterance to the generative brain.
	KindChat Kind = "CHAT"
)

// Decision is the routing result for one utterance. Exactly the fields for
// its Kind are populated: Fact for REFLEX, Task for COMMAND, Tasks for BATCH.
// A BATCH is never empty and never holds a lone CHAT task; that case
// collapses to a plain CHAT decision.
type Decision struct {
	Kind  Kind
	Fact  string
	Task  Task
	Tasks []Task
}

func reflexDecision(fact string) Decision {
	return Decision{Kind: KindReflex, Fact: fact}
}

func commandDecision(task Task) Decision {
	return Decision{Kind: KindCommand, Task: task}
}

func batchDecision(tasks []Task) Decision {
	return Decision{Kind: KindBatch, Tasks: tasks}
}

func chatDecision() Decision {
	return Decision{Kind: KindChat}
}
