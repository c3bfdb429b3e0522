package sync

// Stage names reported through ProgressFunc. A download walks init,
// customers, doors, inspections, complete; an upload reuses the
// inspections and photos stages. The error stage terminates a failed
// pass of either kind.
const (
	StageInit        = "init"
	StageCustomers   = "customers"
	StageDoors       = "doors"
	StageInspections = "inspections"
	StagePhotos      = "photos"
	StageComplete    = "complete"
	StageError       = "error"
)

// Progress is one event in the staged progress sequence of a sync pass.
type Progress struct {
	Stage     string `json:"stage"`
	Percent   int    `json:"percent"`
	Message   string `json:"message"`
	Completed bool   `json:"completed"`
	Error     string `json:"error,omitempty"`
}

// ProgressFunc receives progress events during a sync pass.
//
// Callbacks run synchronously on the calling goroutine between stages, so
// they should return quickly. Nil is accepted wherever a ProgressFunc is.
type ProgressFunc func(Progress)

// emit invokes the callback if one was provided.
func emit(onProgress ProgressFunc, p Progress) {
	if onProgress != nil {
		onProgress(p)
	}
}
