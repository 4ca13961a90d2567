package renderer

// Stats counts what the renderer has done since it was created.
type Stats struct {
	// Frames is the number of frames begun, skipped ones included.
	Frames uint64
	// SkippedFrames is the number of frames dropped because no swapchain texture was available.
	SkippedFrames uint64
	// Submissions is the number of command buffers submitted.
	Submissions uint64
	// RenderPasses is the number of render passes opened.
	RenderPasses uint64
	// DrawCalls is the number of indexed draws issued.
	DrawCalls uint64
	// SkippedDraws is the number of DrawMesh commands that could not be drawn.
	SkippedDraws uint64
	// PipelinesBuilt is the number of graphics pipelines created.
	PipelinesBuilt uint64
	// BuffersCreated is the number of vertex and index buffers created.
	BuffersCreated uint64
	// PlaceholderTextures is the number of times the placeholder replaced a texture that failed to load.
	PlaceholderTextures uint64
}

// Sub returns the difference s - prev, counter by counter.
func (s Stats) Sub(prev Stats) Stats {
	return Stats{
		Frames:              s.Frames - prev.Frames,
		SkippedFrames:       s.SkippedFrames - prev.SkippedFrames,
		Submissions:         s.Submissions - prev.Submissions,
		RenderPasses:        s.RenderPasses - prev.RenderPasses,
		DrawCalls:           s.DrawCalls - prev.DrawCalls,
		SkippedDraws:        s.SkippedDraws - prev.SkippedDraws,
		PipelinesBuilt:      s.PipelinesBuilt - prev.PipelinesBuilt,
		BuffersCreated:      s.BuffersCreated - prev.BuffersCreated,
		PlaceholderTextures: s.PlaceholderTextures - prev.PlaceholderTextures,
	}
}
