package offer

// DetailsInput carries the attribute values of a publish or update request.
// Nil means the field was not sent.
type DetailsInput struct {
	Brand     *string
	Size      *string
	Condition *string
	Color     *string
	Location  *string
}

// NewDetails builds the attribute list of a new offer in its fixed order:
// brand, size, condition, color, location
func NewDetails(in DetailsInput) Details {
	return Details{
		{KeyBrand: deref(in.Brand)},
		{KeySize: deref(in.Size)},
		{KeyCondition: deref(in.Condition)},
		{KeyColor: deref(in.Color)},
		{KeyLocation: deref(in.Location)},
	}
}

func (in DetailsInput) valueFor(key string) *string {
	switch key {
	case KeyBrand:
		return in.Brand
	case KeySize:
		return in.Size
	case KeyCondition:
		return in.Condition
	case KeyColor:
		return in.Color
	case KeyLocation:
		return in.Location
	}
	return nil
}

// Patch overwrites, in place, the value of every record whose key has a
// value in the input. Order is preserved and records are never added or
// removed. Returns whether anything changed.
func (d Details) Patch(in DetailsInput) bool {
	changed := false
	for i := range d {
		key := d[i].Key()
		if key == "" {
			continue
		}
		if v := in.valueFor(key); v != nil {
			d[i][key] = *v
			changed = true
		}
	}
	return changed
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
