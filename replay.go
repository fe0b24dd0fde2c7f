package multirow

// Fields maps field names to their values at some revision.
type Fields map[string]FieldValue

// Replay rebuilds every field by applying intents 0..upToRevision.
// Fields = Replay([i_0, ..., i_r]) の射影。
func Replay(log *IntentLog, upToRevision int) Fields {
	fields := make(Fields)
	if upToRevision < 0 || log.Len() == 0 {
		return fields
	}
	if upToRevision >= log.Len() {
		upToRevision = log.Len() - 1
	}
	for _, in := range log.Range(0, upToRevision+1) {
		fields[in.Field] = in.Apply(fields[in.Field])
	}
	return fields
}

// ReplayLatest rebuilds every field from the whole log.
func ReplayLatest(log *IntentLog) Fields {
	return Replay(log, log.Len()-1)
}

// Checkpoint is an immutable set of field values at a specific revision.
// Field values are immutable, so a checkpoint can be shared freely.
type Checkpoint struct {
	revision int
	fields   Fields
}

// CheckpointFromLog builds a checkpoint at the given revision by replaying the log.
func CheckpointFromLog(log *IntentLog, revision int) *Checkpoint {
	if revision >= log.Len() {
		revision = log.Len() - 1
	}
	return &Checkpoint{revision: revision, fields: Replay(log, revision)}
}

// Revision returns the checkpoint revision.
func (c *Checkpoint) Revision() int {
	if c == nil {
		return -1
	}
	return c.revision
}

// Fields returns a copy of the checkpoint's field map.
func (c *Checkpoint) Fields() Fields {
	if c == nil {
		return nil
	}
	return c.fields.clone()
}

// ReplayFromCheckpoint applies the intents after the checkpoint up to toRevision.
// If toRevision is before the checkpoint it falls back to a full replay.
// checkpoint以降のIntentだけ適用する。
func ReplayFromCheckpoint(c *Checkpoint, log *IntentLog, toRevision int) Fields {
	if c == nil || toRevision < c.revision {
		return Replay(log, toRevision)
	}
	if toRevision >= log.Len() {
		toRevision = log.Len() - 1
	}
	fields := c.fields.clone()
	for _, in := range log.Range(c.revision+1, toRevision+1) {
		fields[in.Field] = in.Apply(fields[in.Field])
	}
	return fields
}

func (f Fields) clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
