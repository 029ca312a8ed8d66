package scene

// Family returns the children of o. When recursive is set each batch of
// children is followed by the family of that batch.
func (s *Scene) Family(o *Object, recursive bool) []*Object {
	if !recursive {
		return s.Children(o)
	}
	return s.familyOf([]*Object{o})
}

func (s *Scene) familyOf(parents []*Object) []*Object {
	var family []*Object
	for _, p := range parents {
		children := s.Children(p)
		family = append(family, children...)
		if len(children) > 0 {
			family = append(family, s.familyOf(children)...)
		}
	}
	return family
}

func (s *Scene) activeFamily(recursive bool) ([]*Object, error) {
	if s.active == nil {
		return nil, ErrNoActiveObject
	}
	return s.Family(s.active, recursive), nil
}

// ShowChildren unhides the children of the active object.
func (s *Scene) ShowChildren(recursive bool) error {
	family, err := s.activeFamily(recursive)
	for _, o := range family {
		o.Hidden = false
	}
	return err
}

// HideChildren hides the children of the active object.
func (s *Scene) HideChildren(recursive bool) error {
	family, err := s.activeFamily(recursive)
	for _, o := range family {
		o.Hidden = true
	}
	return err
}

// SelectChildren replaces the selection with the children of the active
// object.
func (s *Scene) SelectChildren(recursive bool) error {
	family, err := s.activeFamily(recursive)
	if err != nil {
		return err
	}
	s.DeselectAll()
	for _, o := range family {
		o.Selected = true
	}
	return nil
}

// AssignBranchMaterial creates one half transparent grey material named after
// the active object and appends it to every child carrying a mesh.
func (s *Scene) AssignBranchMaterial(recursive bool) (*Material, error) {
	family, err := s.activeFamily(recursive)
	if err != nil {
		return nil, err
	}
	mat := s.NewMaterial(s.active.Name)
	mat.Transparent = true
	mat.Alpha = 0.5
	mat.Diffuse = [3]float64{0.8, 0.8, 0.8}
	for _, o := range family {
		if o.IsEmpty() {
			continue
		}
		o.Materials = append(o.Materials, mat)
		o.ShowTransparent = true
	}
	return mat, nil
}

// DeleteChildren deletes the children of the active object. The active
// object itself stays active.
func (s *Scene) DeleteChildren(recursive bool) (int, error) {
	family, err := s.activeFamily(recursive)
	if err != nil {
		return 0, err
	}
	active := s.active
	s.DeselectAll()
	for _, o := range family {
		o.Hidden = false
		o.Selected = true
		s.Delete(o)
	}
	s.active = active
	return len(family), nil
}
