package nats

import "testing"

func TestValidatePublishSubject(t *testing.T) {
	cases := []struct {
		subject string
		wantErr bool
	}{
		{"updates.us.ca", false},
		{"", true},
		{"updates..ca", true},
		{"updates us", true},
		{"updates.*", true},
		{"updates.>", true},
	}
	for _, c := range cases {
		err := validatePublishSubject(c.subject)
		if (err != nil) != c.wantErr {
			t.Errorf("validatePublishSubject(%q) error = %v, wantErr %v", c.subject, err, c.wantErr)
		}
	}
}

func TestValidateSubscribeSubject(t *testing.T) {
	cases := []struct {
		subject string
		wantErr bool
	}{
		{"updates.*", false},
		{"updates.>", false},
		{"updates.>.ca", true},
		{"updates..ca", true},
		{"", true},
	}
	for _, c := range cases {
		err := validateSubscribeSubject(c.subject)
		if (err != nil) != c.wantErr {
			t.Errorf("validateSubscribeSubject(%q) error = %v, wantErr %v", c.subject, err, c.wantErr)
		}
	}
}
