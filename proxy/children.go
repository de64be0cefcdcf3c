package proxy

import (
	"github.com/pkg/errors"

	"github.com/VanDung-dev/columnar/descriptor"
)

func (p *Proxy) mutableBoth(op string) (*descriptor.ArrayPrivateData, *descriptor.SchemaPrivateData, error) {
	apd, err := p.mutableArray(op)
	if err != nil {
		return nil, nil, err
	}
	spd, err := p.mutableSchema(op)
	if err != nil {
		return nil, nil, err
	}
	return apd, spd, nil
}

// links turns a child proxy into the slots that adopt its descriptors. A
// side the child owned is owned by the parent, a borrowed side stays
// borrowed.
func links(child *Proxy) (descriptor.ArrayLink, descriptor.SchemaLink) {
	al := descriptor.BorrowedArray(child.array)
	if child.arrayKind == owned {
		al = descriptor.OwnedArray(child.array)
	}
	sl := descriptor.BorrowedSchema(child.schema)
	if child.schemaKind == owned {
		sl = descriptor.OwnedSchema(child.schema)
	}
	return al, sl
}

func checkAdoptable(op string, children ...*Proxy) error {
	for i, c := range children {
		if c == nil || c.array == nil || c.schema == nil {
			return errors.Wrapf(ErrInvalidHandles, "%s: child %d is empty", op, i)
		}
	}
	return nil
}

// ResizeChildren grows or shrinks the children of both descriptors. Owned
// children that are dropped are released; new slots are empty until set
// with SetChild.
func (p *Proxy) ResizeChildren(n int) error {
	apd, spd, err := p.mutableBoth("resize_children")
	if err != nil {
		return err
	}
	if n < 0 {
		return errors.Wrapf(ErrOutOfRange, "resize_children: negative count %d", n)
	}
	apd.ResizeChildren(n)
	spd.ResizeChildren(n)
	p.refresh()
	return nil
}

// PopChildren removes the last n children.
func (p *Proxy) PopChildren(n int) error {
	if n < 0 || n > p.NChildren() {
		return errors.Wrapf(ErrOutOfRange, "pop_children: %d of %d", n, p.NChildren())
	}
	return p.ResizeChildren(p.NChildren() - n)
}

// AddChildren appends children. Each child proxy is consumed: what it owned
// is owned by p afterwards and the child proxy is left empty.
func (p *Proxy) AddChildren(children ...*Proxy) error {
	apd, spd, err := p.mutableBoth("add_children")
	if err != nil {
		return err
	}
	if err := checkAdoptable("add_children", children...); err != nil {
		return err
	}
	base := len(apd.Children())
	apd.ResizeChildren(base + len(children))
	spd.ResizeChildren(base + len(children))
	for i, c := range children {
		al, sl := links(c)
		apd.SetChild(base+i, al)
		spd.SetChild(base+i, sl)
		c.detach()
	}
	p.refresh()
	return nil
}

// SetChild replaces child i, consuming child as AddChildren does. The
// previous child is released if p owned it.
func (p *Proxy) SetChild(i int, child *Proxy) error {
	apd, spd, err := p.mutableBoth("set_child")
	if err != nil {
		return err
	}
	if i < 0 || i >= len(apd.Children()) {
		return errors.Wrapf(ErrOutOfRange, "set_child: child %d of %d", i, len(apd.Children()))
	}
	if err := checkAdoptable("set_child", child); err != nil {
		return err
	}
	al, sl := links(child)
	apd.SetChild(i, al)
	spd.SetChild(i, sl)
	child.detach()
	p.refresh()
	return nil
}

// SetDictionary replaces the dictionary, consuming dict as AddChildren does.
// A nil dict removes the dictionary. The previous one is released if p owned
// it.
func (p *Proxy) SetDictionary(dict *Proxy) error {
	apd, spd, err := p.mutableBoth("set_dictionary")
	if err != nil {
		return err
	}
	if dict == nil {
		apd.SetDictionary(nil)
		spd.SetDictionary(nil)
		p.refresh()
		return nil
	}
	if err := checkAdoptable("set_dictionary", dict); err != nil {
		return err
	}
	al, sl := links(dict)
	apd.SetDictionary(&al)
	spd.SetDictionary(&sl)
	dict.detach()
	p.refresh()
	return nil
}
