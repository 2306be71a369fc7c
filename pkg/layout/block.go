package layout

// Block is the placement of a single visible item.
// All coordinates are in container units (pixels for the DOM host,
// cells for the terminal host). Top is measured from the container top.
type Block struct {
	ItemID      string
	Column      int
	Left, Right float64
	Top, Bottom float64
}

// Width returns the horizontal span of the block.
func (b Block) Width() float64 { return b.Right - b.Left }

// Height returns the vertical span of the block.
func (b Block) Height() float64 { return b.Bottom - b.Top }

// CenterX returns the horizontal center point of the block.
func (b Block) CenterX() float64 { return (b.Left + b.Right) / 2 }

// CenterY returns the vertical center point of the block.
func (b Block) CenterY() float64 { return (b.Top + b.Bottom) / 2 }

// X is the translate offset applied to the item.
func (b Block) X() float64 { return b.Left }

// Y is the translate offset applied to the item.
func (b Block) Y() float64 { return b.Top }
