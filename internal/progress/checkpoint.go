package progress

// VerifyCheckpoint returns verified iff the checkpoint's phase is
// COMPLETED and its referenced milestone (MilestoneReached) is
// COMPLETED; partially_verified iff the phase is COMPLETED but that
// one milestone is not; not_verified otherwise.
func (t *Tracker) VerifyCheckpoint(checkpointID string) (VerificationResult, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	cp, ok := t.checkpoints[checkpointID]
	if !ok {
		return VerificationResult{}, &UnknownTaskError{TaskID: checkpointID}
	}

	if !t.phaseCompleteLocked(cp.AfterPhase) {
		return VerificationResult{CheckpointID: checkpointID, Status: NotVerified}, nil
	}

	milestoneID, ok := t.milestoneByOrder[cp.MilestoneReached]
	if ok && t.milestoneStatusLocked(milestoneID) != StatusCompleted {
		return VerificationResult{CheckpointID: checkpointID, Status: PartiallyVerified}, nil
	}

	return VerificationResult{CheckpointID: checkpointID, Status: Verified}, nil
}
