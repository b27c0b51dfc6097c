//go:build windows

package solidworks

import (
	"context"
	"fmt"
	"runtime"

	"github.com/desertthunder/swbatch/internal/converter"
	"github.com/desertthunder/swbatch/internal/formats"
	"github.com/desertthunder/swbatch/internal/shared"
	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

// Client drives a SolidWorks instance over COM.
type Client struct {
	app *ole.IDispatch
}

// NewClient creates an unconnected Client.
func NewClient() *Client {
	return &Client{}
}

// Connect initializes COM on the current OS thread and launches or attaches
// to the SolidWorks application. The thread is locked for the lifetime of the
// connection: COM apartments are thread-affine.
func (c *Client) Connect(ctx context.Context, visible bool) error {
	if c.app != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	runtime.LockOSThread()
	if err := ole.CoInitialize(0); err != nil {
		runtime.UnlockOSThread()
		return fmt.Errorf("COM initialization failed: %w", err)
	}

	unknown, err := oleutil.CreateObject(progID)
	if err != nil {
		ole.CoUninitialize()
		runtime.UnlockOSThread()
		return fmt.Errorf("failed to launch SolidWorks: %w", err)
	}

	app, err := unknown.QueryInterface(ole.IID_IDispatch)
	unknown.Release()
	if err != nil {
		ole.CoUninitialize()
		runtime.UnlockOSThread()
		return fmt.Errorf("failed to acquire application dispatch: %w", err)
	}

	if _, err := oleutil.PutProperty(app, "Visible", visible); err != nil {
		app.Release()
		ole.CoUninitialize()
		runtime.UnlockOSThread()
		return fmt.Errorf("failed to set application visibility: %w", err)
	}

	c.app = app
	return nil
}

// Open opens a source document. A nil handle with nil error means SolidWorks
// refused the document, which callers record as an open failure.
func (c *Client) Open(path string, docType formats.DocType) (converter.DocumentHandle, error) {
	v, err := oleutil.CallMethod(c.app, "OpenDoc6", path, int(docType), swOpenDocOptionsSilent, "", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("OpenDoc6 failed: %w", err)
	}
	dispatch := v.ToIDispatch()
	if dispatch == nil {
		return nil, nil
	}

	title := ""
	if titleV, err := oleutil.GetProperty(dispatch, "GetTitle"); err == nil {
		title = titleV.ToString()
	}
	return &document{dispatch: dispatch, title: title}, nil
}

// SaveAsRich exports via ModelDocExtension.SaveAs3, which reports structured
// error and warning codes. Installations that predate the extension API fail
// with shared.ErrRichSaveUnavailable so callers can fall back.
func (c *Client) SaveAsRich(handle converter.DocumentHandle, path string) (converter.SaveOutcome, error) {
	doc := handle.(*document)

	extV, err := oleutil.GetProperty(doc.dispatch, "Extension")
	if err != nil {
		return converter.SaveOutcome{}, fmt.Errorf("%w: %v", shared.ErrRichSaveUnavailable, err)
	}
	ext := extV.ToIDispatch()
	if ext == nil {
		return converter.SaveOutcome{}, fmt.Errorf("%w: no extension dispatch", shared.ErrRichSaveUnavailable)
	}
	defer ext.Release()

	errVar := &ole.VARIANT{}
	ole.VariantInit(errVar)
	warnVar := &ole.VARIANT{}
	ole.VariantInit(warnVar)

	v, err := oleutil.CallMethod(ext, "SaveAs3", path, swSaveAsCurrentVersion, swSaveAsOptionsSilent, nil, nil, errVar, warnVar)
	if err != nil {
		return converter.SaveOutcome{}, fmt.Errorf("%w: %v", shared.ErrRichSaveUnavailable, err)
	}

	success, _ := v.Value().(bool)
	return converter.SaveOutcome{
		Success:  success,
		Errors:   int(errVar.Val),
		Warnings: int(warnVar.Val),
	}, nil
}

// SaveAsLegacy exports via the legacy SaveAs call, which only reports a
// boolean.
func (c *Client) SaveAsLegacy(handle converter.DocumentHandle, path string) (bool, error) {
	doc := handle.(*document)
	v, err := oleutil.CallMethod(doc.dispatch, "SaveAs", path)
	if err != nil {
		return false, fmt.Errorf("SaveAs failed: %w", err)
	}
	success, _ := v.Value().(bool)
	return success, nil
}

// Close releases the document's slot in the application.
func (c *Client) Close(handle converter.DocumentHandle) error {
	doc := handle.(*document)
	defer doc.dispatch.Release()
	if _, err := oleutil.CallMethod(c.app, "CloseDoc", doc.title); err != nil {
		return fmt.Errorf("failed to close %s: %w", doc.title, err)
	}
	return nil
}

// Disconnect releases the application dispatch and tears down COM. The
// application itself is left running; it may predate this session.
func (c *Client) Disconnect() error {
	if c.app == nil {
		return nil
	}
	c.app.Release()
	c.app = nil
	ole.CoUninitialize()
	runtime.UnlockOSThread()
	return nil
}

// document wraps an open ModelDoc2 dispatch.
type document struct {
	dispatch *ole.IDispatch
	title    string
}

func (d *document) Title() string {
	return d.title
}
