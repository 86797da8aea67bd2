package reconcile

const (
	KeyReconcileDialogTitle       = "reconcileDialogTitle"
	KeyInputSetUpdated            = "inputSetUpdated"
	KeyOverlayInputSetUpdated     = "overlayInputSetUpdated"
	KeyInputSetDeleted            = "inputSetDeleted"
	KeyOverlayInputSetDeleted     = "overlayInputSetDeleted"
	KeyInvalidInputSetTitle       = "invalidInputSetTitle"
	KeyInvalidInputSetDesc1       = "invalidInputSetDesc1"
	KeyInvalidOverlayInputSetDesc = "invalidOverlayInputSetDesc"
	KeyReconcileFetchFailed       = "reconcileFetchFailed"
)

var messages = map[string]string{
	KeyReconcileDialogTitle:       "Reconcile input set with the pipeline",
	KeyInputSetUpdated:            "Input Set updated successfully",
	KeyOverlayInputSetUpdated:     "Overlay Input Set updated successfully",
	KeyInputSetDeleted:            "Input Set deleted successfully",
	KeyOverlayInputSetDeleted:     "Overlay Input Set deleted successfully",
	KeyInvalidInputSetTitle:       "Input Set is invalid",
	KeyInvalidInputSetDesc1:       "All runtime inputs of this input set were removed from the pipeline. It cannot be reconciled and should be deleted.",
	KeyInvalidOverlayInputSetDesc: "None of the input sets referenced by this overlay input set exist anymore. It cannot be reconciled and should be deleted.",
	KeyReconcileFetchFailed:       "Unable to compare the input set with the pipeline",
}

// Message returns the English text for key, or key itself when unknown.
func Message(key string) string {
	if m, ok := messages[key]; ok {
		return m
	}
	return key
}
