package shell

import "image"

// command is a request from the Bridge to the dispatcher.
type command interface {
	command()
}

type (
	createLayerSurface struct {
		ID     SurfaceID
		Params LayerParams
	}

	createPopup struct {
		ID     SurfaceID
		Params PopupParams
	}

	createLockSurface struct {
		ID     SurfaceID
		Output OutputID
	}

	createWindow struct {
		ID     SurfaceID
		Params WindowParams
	}

	resize struct {
		ID   SurfaceID
		Size Size
	}

	setAnchor struct {
		ID     SurfaceID
		Anchor Anchor
	}

	setMargin struct {
		ID     SurfaceID
		Margin Margin
	}

	setExclusiveZone struct {
		ID   SurfaceID
		Zone int32
	}

	setKeyboardInteractivity struct {
		ID    SurfaceID
		Value KeyboardInteractivity
	}

	setLayer struct {
		ID    SurfaceID
		Layer Layer
	}

	destroy struct {
		ID SurfaceID
	}

	// dropped acknowledges a Closed notification.
	dropped struct {
		ID SurfaceID
	}

	requestRedraw struct {
		ID SurfaceID
	}

	present struct {
		ID    SurfaceID
		Image image.Image
	}

	lock struct{}

	unlock struct{}

	requestActivationToken struct {
		AppID  string
		Window SurfaceID
		Reply  chan<- string
	}

	activate struct {
		Window SurfaceID
		Token  string
	}
)

func (createLayerSurface) command()       {}
func (createPopup) command()              {}
func (createLockSurface) command()        {}
func (createWindow) command()             {}
func (resize) command()                   {}
func (setAnchor) command()                {}
func (setMargin) command()                {}
func (setExclusiveZone) command()         {}
func (setKeyboardInteractivity) command() {}
func (setLayer) command()                 {}
func (destroy) command()                  {}
func (dropped) command()                  {}
func (requestRedraw) command()            {}
func (present) command()                  {}
func (lock) command()                     {}
func (unlock) command()                   {}
func (requestActivationToken) command()   {}
func (activate) command()                 {}
