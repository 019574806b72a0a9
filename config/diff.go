package config

import "reflect"

// diffEvent builds an Event describing which top-level struct fields differ
// between old and new.
func diffEvent(old, new any) Event {
	var changedKeys []string

	if old == nil || new == nil {
		return Event{ChangedKeys: changedKeys, OldConfig: old, NewConfig: new}
	}

	oldVal := reflect.ValueOf(old)
	newVal := reflect.ValueOf(new)
	if oldVal.Kind() == reflect.Ptr {
		oldVal = oldVal.Elem()
	}
	if newVal.Kind() == reflect.Ptr {
		newVal = newVal.Elem()
	}

	if oldVal.Kind() == reflect.Struct && newVal.Kind() == reflect.Struct {
		oldType := oldVal.Type()
		for i := 0; i < oldVal.NumField(); i++ {
			if !reflect.DeepEqual(oldVal.Field(i).Interface(), newVal.Field(i).Interface()) {
				changedKeys = append(changedKeys, oldType.Field(i).Name)
			}
		}
	}

	return Event{ChangedKeys: changedKeys, OldConfig: old, NewConfig: new}
}
