package main

import (
	"context"

	"github.com/trezcool/vsip/core"
	"github.com/trezcool/vsip/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(name, email, pwd, role string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)
	if user.RolePriority(role) == 0 {
		role = user.RoleAdmin
	}

	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Name:  name,
			Email: email,
		}
	}
	usr.Role = role
	usr.IsActive = true
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}

	active := true
	if usr.ID == "" {
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	} else {
		_, err = cli.usrRepo.UpdateUser(ctx, usr, &active)
	}
	return err
}
