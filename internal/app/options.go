package app

// Keys handled by the frame loop.
const (
	KeyQuit      = 'q'
	KeyImage     = 'i'
	KeyUsers     = 'u'
	KeySkeleton  = 's'
	KeyDepth     = 'd'
	KeyMirror    = 'm'
	KeyFrameSync = 'f'
	KeyGesture   = 'g'
)

// Setting keys used to persist Options.
const (
	SettingShowImage    = "show_image"
	SettingShowUsers    = "show_users"
	SettingShowSkeleton = "show_skeleton"
	SettingShowDepth    = "show_depth"
	SettingMirror       = "mirror"
)

// Options are the display toggles.
type Options struct {
	ShowImage    bool `json:"show_image"`
	ShowUsers    bool `json:"show_users"`
	ShowSkeleton bool `json:"show_skeleton"`
	ShowDepth    bool `json:"show_depth"`
	Mirror       bool `json:"mirror"`
}

// DefaultOptions shows everything, unmirrored.
func DefaultOptions() Options {
	return Options{
		ShowImage:    true,
		ShowUsers:    true,
		ShowSkeleton: true,
		ShowDepth:    true,
	}
}

// HandleKey flips the toggle bound to key. It reports whether the key was
// a display toggle.
func (o *Options) HandleKey(key int) bool {
	switch key {
	case KeyImage:
		o.ShowImage = !o.ShowImage
	case KeyUsers:
		o.ShowUsers = !o.ShowUsers
	case KeySkeleton:
		o.ShowSkeleton = !o.ShowSkeleton
	case KeyDepth:
		o.ShowDepth = !o.ShowDepth
	case KeyMirror:
		o.Mirror = !o.Mirror
	default:
		return false
	}
	return true
}

// Set updates the toggle with the given setting name.
func (o *Options) Set(name string, value bool) bool {
	switch name {
	case SettingShowImage:
		o.ShowImage = value
	case SettingShowUsers:
		o.ShowUsers = value
	case SettingShowSkeleton:
		o.ShowSkeleton = value
	case SettingShowDepth:
		o.ShowDepth = value
	case SettingMirror:
		o.Mirror = value
	default:
		return false
	}
	return true
}

// Map returns the toggles keyed by setting name.
func (o Options) Map() map[string]bool {
	return map[string]bool{
		SettingShowImage:    o.ShowImage,
		SettingShowUsers:    o.ShowUsers,
		SettingShowSkeleton: o.ShowSkeleton,
		SettingShowDepth:    o.ShowDepth,
		SettingMirror:       o.Mirror,
	}
}
